package l10n_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifei6671/l10n"
)

const (
	enUS = "language_name = English\ngreeting = Hello, { $name }!\nblank = { \"\" }\n"
	frFR = "language_name = Français\ngreeting = Bonjour, { $name }!\n"
)

func installed(t *testing.T, opts ...l10n.Option) *l10n.Registry {
	t.Helper()
	opts = append([]l10n.Option{quiet()}, opts...)
	loader := l10n.NewLoader(opts...)
	staging := l10n.NewStaging()
	require.NoError(t, loader.Load(staging, "en-US.cat", []byte(enUS)))
	require.NoError(t, loader.Load(staging, "fr-FR.cat", []byte(frFR)))

	reg, err := l10n.Install(staging, opts...)
	require.NoError(t, err)
	assert.Zero(t, staging.Len())
	return reg
}

func TestRegistry_EndToEnd(t *testing.T) {
	t.Parallel()

	reg := installed(t)
	assert.Equal(t, "Hello, Ada!", reg.LocalizeWithArgs("greeting", l10n.Args{"name": "Ada"}))
	assert.Equal(t, "en-US", reg.Active().Tag().String())
	assert.Equal(t, "English", reg.Active().Name())

	assert.Equal(t, []l10n.Language{
		{Tag: l10n.MustParseTag("en-US"), Name: "English"},
		{Tag: l10n.MustParseTag("fr-FR"), Name: "Français"},
	}, reg.Languages())

	fr, ok := reg.Bundle(l10n.MustParseTag("fr-FR"))
	require.True(t, ok)
	got, err := fr.Lookup("greeting", l10n.Args{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "Bonjour, Ada!", got)

	_, ok = reg.Bundle(l10n.MustParseTag("de-DE"))
	assert.False(t, ok)
}

func TestRegistry_FallsBackToID(t *testing.T) {
	t.Parallel()

	reg := installed(t)
	assert.Equal(t, "nonexistent-id", reg.Localize("nonexistent-id"))
	assert.Equal(t, "blank", reg.Localize("blank"))
	assert.Equal(t, "Hello, {$name}!", reg.Localize("greeting"))

	var localizer l10n.Localizer = reg
	assert.Equal(t, "Hello, Bob!", localizer.LocalizeWithArgs("greeting", l10n.Args{"name": "Bob"}))
}

func TestRegistry_DefaultLanguage(t *testing.T) {
	t.Parallel()

	reg := installed(t, l10n.WithDefaultLanguage("fr-FR"))
	assert.Equal(t, "Bonjour, Ada!", reg.LocalizeWithArgs("greeting", l10n.Args{"name": "Ada"}))

	_, err := l10n.NewRegistry(nil, quiet(), l10n.WithDefaultLanguage("not a tag!"))
	assert.ErrorIs(t, err, l10n.ErrInvalidTag)
}

func TestRegistry_MissingDefault(t *testing.T) {
	t.Parallel()

	t.Run("OnlyFrench", func(t *testing.T) {
		staging := l10n.NewStaging()
		staging.Add("fr-FR.cat", mustParse(t, "fr-FR", frFR))

		_, err := l10n.Install(staging, quiet())
		require.Error(t, err)
		assert.True(t, errors.Is(err, l10n.ErrMissingDefaultLanguage))

		var merr *l10n.MissingDefaultLanguageError
		require.ErrorAs(t, err, &merr)
		assert.Equal(t, "en-US", merr.Want.String())
		require.Len(t, merr.Loaded, 1)
		assert.Equal(t, "fr-FR", merr.Loaded[0].String())
		assert.Contains(t, err.Error(), "en-US.ftl")
	})
	t.Run("Empty", func(t *testing.T) {
		_, err := l10n.NewRegistry(nil, quiet())
		assert.ErrorIs(t, err, l10n.ErrMissingDefaultLanguage)
	})
	t.Run("MustInstall", func(t *testing.T) {
		assert.Panics(t, func() { l10n.MustInstall(l10n.NewStaging(), quiet()) })
	})
}
