package l10n_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lifei6671/l10n"
)

func quiet() l10n.Option {
	return l10n.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func mustParse(t *testing.T, stem, src string, opts ...l10n.Option) *l10n.Bundle {
	t.Helper()
	b, err := l10n.Parse([]byte(src), stem, append([]l10n.Option{quiet()}, opts...)...)
	require.NoError(t, err)
	return b
}
