package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lifei6671/l10n/cmd/l10nlint/checker"
)

func catalogDirWith(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
	}
	return dir
}

func cleanCatalogs(t *testing.T) string {
	return catalogDirWith(t, map[string]string{
		"en-US.ftl": "language_name = English\ngreeting = Hello, { $name }!\n",
		"fr-FR.ftl": "language_name = Français\ngreeting = Bonjour, { $name }!\n",
	})
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("L10N_LOG_LEVEL", "error")
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	dir := cleanCatalogs(t)

	out, err := run(t, "render", "greeting", "name=Ada", "-d", dir)
	require.NoError(t, err)
	assert.Equal(t, "Hello, Ada!\n", out)

	out, err = run(t, "render", "greeting", "name=Ada", "-d", dir, "--default", "fr-FR")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour, Ada!\n", out)

	out, err = run(t, "render", "nonexistent-id", "-d", dir)
	require.NoError(t, err)
	assert.Equal(t, "nonexistent-id\n", out)

	_, err = run(t, "render", "greeting", "name", "-d", dir)
	assert.ErrorContains(t, err, "name=value")
}

func TestLanguages(t *testing.T) {
	dir := cleanCatalogs(t)

	out, err := run(t, "languages", "-d", dir)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "* en-US"))
	assert.Contains(t, lines[0], "English")
	assert.True(t, strings.HasPrefix(lines[1], "  fr-FR"))
	assert.Contains(t, lines[1], "Français")

	_, err = run(t, "languages", "-d", catalogDirWith(t, map[string]string{
		"fr-FR.ftl": "language_name = Français\n",
	}))
	assert.ErrorContains(t, err, "en-US")
}

func TestCheck_Formats(t *testing.T) {
	dir := cleanCatalogs(t)

	decoders := map[string]func([]byte, *checker.Result) error{
		"json": func(b []byte, r *checker.Result) error { return json.Unmarshal(b, r) },
		"yaml": func(b []byte, r *checker.Result) error { return yaml.Unmarshal(b, r) },
		"toml": func(b []byte, r *checker.Result) error { _, err := toml.Decode(string(b), r); return err },
	}
	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			out, err := run(t, "check", dir, "--format", format, "--fail")
			require.NoError(t, err)

			var res checker.Result
			require.NoError(t, decode([]byte(out), &res))
			assert.Equal(t, "en-US", res.Default)
			assert.True(t, res.DefaultFound)
			assert.Equal(t, []string{"en-US", "fr-FR"}, res.Languages)
			assert.Equal(t, []string{"greeting", "language_name"}, res.AllKeys)
			assert.False(t, res.HasIssues())
		})
	}

	t.Run("text", func(t *testing.T) {
		out, err := run(t, "check", dir)
		require.NoError(t, err)
		assert.Contains(t, out, "=== L10N CHECK RESULT ===")
		assert.Contains(t, out, "Total keys: 2")
		assert.Contains(t, out, "--- [fr-FR] ---")
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := run(t, "check", dir, "--format", "xml")
		assert.ErrorContains(t, err, "unknown format")
	})
}

func TestCheck_Fail(t *testing.T) {
	dir := catalogDirWith(t, map[string]string{
		"en-US.ftl": "language_name = English\ngreeting = Hello\nbye = Bye\n",
		"fr-FR.ftl": "language_name = Français\ngreeting = Bonjour\n",
		"de-DE.ftl": "language_name = Deutsch\nbad line\n",
	})

	out, err := run(t, "check", dir, "--fail")
	assert.ErrorIs(t, err, errIssuesFound)
	assert.Contains(t, out, "Missing keys:\n  - bye")
	assert.Contains(t, out, "2:5: expected '='")

	// Without --fail the report is printed and the run succeeds.
	_, err = run(t, "check", dir)
	assert.NoError(t, err)
}
