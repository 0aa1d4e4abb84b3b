package l10n_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifei6671/l10n"
)

const enCatalog = `language_name = English
greeting = Hello, { $name }!
brand = Acme
welcome = Welcome to { brand }
login =
    .placeholder = Email address
use-login = Type your { login.placeholder }
emails = { $count ->
    [0] No emails
    [1] One email
   *[other] { $count } emails
}
-product = Widget
    .gender = neuter
about = About { -product }
pronoun = { -product.gender ->
    [masculine] he
   *[other] it
}
-thing = { $case ->
    [acc] Things
   *[nom] Thing
}
has-things = You have { -thing(case: "acc") }
total = Total: { NUMBER($n) }
fixed = { NUMBER(1234) }
unknown-fn = { FOO() }
loud = { UPPER($word) }
a = { b }
b = { a }
self = x { self }
`

func TestBundle_Lookup(t *testing.T) {
	t.Parallel()

	b := mustParse(t, "en-US", enCatalog, l10n.WithFunction("UPPER",
		func(positional []string, _ map[string]string) (string, error) {
			return strings.ToUpper(strings.Join(positional, "")), nil
		}))

	cases := []struct {
		id   string
		args l10n.Args
		want string
	}{
		{"greeting", l10n.Args{"name": "Ada"}, "Hello, Ada!"},
		{"welcome", nil, "Welcome to Acme"},
		{"login.placeholder", nil, "Email address"},
		{"use-login", nil, "Type your Email address"},
		{"emails", l10n.Args{"count": "0"}, "No emails"},
		{"emails", l10n.Args{"count": "1"}, "One email"},
		{"emails", l10n.Args{"count": "1.0"}, "One email"},
		{"emails", l10n.Args{"count": "7"}, "7 emails"},
		{"about", nil, "About Widget"},
		{"pronoun", nil, "it"},
		{"has-things", nil, "You have Things"},
		{"total", l10n.Args{"n": "1234"}, "Total: 1,234"},
		{"fixed", nil, "1,234"},
		{"loud", l10n.Args{"word": "hey"}, "HEY"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%s_%v", tc.id, tc.args), func(t *testing.T) {
			got, warnings, err := b.Format(tc.id, tc.args)
			require.NoError(t, err)
			assert.Empty(t, warnings)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBundle_RoundTrip(t *testing.T) {
	t.Parallel()

	b := mustParse(t, "en-US", "msg = <<  { $name } >>\t!\n")
	got, err := b.Lookup("msg", l10n.Args{"name": "World"})
	require.NoError(t, err)
	assert.Equal(t, "<<  World >>\t!", got)
}

func TestBundle_NotFound(t *testing.T) {
	t.Parallel()

	b := mustParse(t, "en-US", enCatalog)
	for _, id := range []string{"nonexistent-id", "login", "login.missing", "-product", ""} {
		t.Run(id, func(t *testing.T) {
			_, err := b.Lookup(id, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, l10n.ErrMessageNotFound))

			var nf *l10n.MessageNotFoundError
			require.ErrorAs(t, err, &nf)
			assert.Equal(t, id, nf.ID)
			assert.Equal(t, "en-US", nf.Tag.String())
		})
	}
	assert.False(t, b.HasMessage("nonexistent-id"))
	assert.True(t, b.HasMessage("login.placeholder"))
	assert.False(t, b.HasMessage("login"))
}

func TestBundle_Warnings(t *testing.T) {
	t.Parallel()

	b := mustParse(t, "en-US", enCatalog)

	cases := []struct {
		id   string
		args l10n.Args
		want string
		kind error
	}{
		{"greeting", nil, "Hello, {$name}!", l10n.ErrUnknownVariable},
		{"emails", nil, "{$count} emails", l10n.ErrUnknownVariable},
		{"unknown-fn", nil, "{FOO()}", l10n.ErrUnknownFunction},
		{"total", l10n.Args{"n": "lots"}, "Total: {NUMBER()}", l10n.ErrFunction},
		{"a", nil, "{???}", l10n.ErrCyclicReference},
		{"self", nil, "x {???}", l10n.ErrCyclicReference},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			got, warnings, err := b.Format(tc.id, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			require.NotEmpty(t, warnings)
			assert.ErrorIs(t, warnings[0], tc.kind)

			// Lookup logs the same warnings and still returns the text.
			text, err := b.Lookup(tc.id, tc.args)
			require.NoError(t, err)
			assert.Equal(t, tc.want, text)
		})
	}
}

func TestBundle_UnknownReferences(t *testing.T) {
	t.Parallel()

	b := mustParse(t, "en-US", "m = { missing } and { -gone } and { missing.attr }\n")
	got, warnings, err := b.Format("m", nil)
	require.NoError(t, err)
	assert.Equal(t, "{missing} and {-gone} and {missing.attr}", got)
	require.Len(t, warnings, 3)
	assert.ErrorIs(t, warnings[0], l10n.ErrUnknownMessage)
	assert.ErrorIs(t, warnings[1], l10n.ErrUnknownTerm)
}

func TestBundle_Name(t *testing.T) {
	t.Parallel()

	t.Run("Name_Success", func(t *testing.T) {
		b := mustParse(t, "fr-FR", "language_name = Français\n")
		assert.Equal(t, "Français", b.Name())
		assert.Equal(t, "fr-FR", b.Tag().String())
	})
	t.Run("Name_Missing", func(t *testing.T) {
		b := mustParse(t, "de-DE", "hello = Hallo\n")
		assert.Equal(t, l10n.LanguageNameID, b.Name())
	})
	t.Run("Name_Empty", func(t *testing.T) {
		b := mustParse(t, "de-DE", "language_name = { \"\" }\n")
		assert.Equal(t, l10n.LanguageNameID, b.Name())
	})
}

func TestBundle_MessageIDs(t *testing.T) {
	t.Parallel()

	b := mustParse(t, "en-US", "zeta = z\nalpha = a\n-term = t\nmid = m\n")
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, b.MessageIDs())
}

// Run with -race: many readers share the memoized patterns.
func TestBundle_ConcurrentLookup(t *testing.T) {
	t.Parallel()

	b := mustParse(t, "en-US", enCatalog)

	const workers = 32
	ids := []struct {
		id   string
		args l10n.Args
		want string
	}{
		{"greeting", l10n.Args{"name": "Ada"}, "Hello, Ada!"},
		{"welcome", nil, "Welcome to Acme"},
		{"emails", l10n.Args{"count": "3"}, "3 emails"},
		{"fixed", nil, "1,234"},
		{"a", nil, "{???}"},
	}

	var wg sync.WaitGroup
	results := make([][]string, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				for _, c := range ids {
					got, _, err := b.Format(c.id, c.args)
					if err != nil {
						got = err.Error()
					}
					results[w] = append(results[w], got)
				}
			}
		}(w)
	}
	wg.Wait()

	for w := range results {
		require.Len(t, results[w], 50*len(ids))
		for i, got := range results[w] {
			assert.Equal(t, ids[i%len(ids)].want, got)
		}
	}
}

func expandingCatalog(levels int) string {
	var sb strings.Builder
	sb.WriteString("l0 = x\n")
	for i := 1; i <= levels; i++ {
		fmt.Fprintf(&sb, "l%d =", i)
		for j := 0; j < 10; j++ {
			fmt.Fprintf(&sb, " { l%d }", i-1)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "bomb = { $x } { l%d }\n", levels)
	fmt.Fprintf(&sb, "language_name = { l%d }\n", levels)
	return sb.String()
}

func TestBundle_TooManyPlaceables(t *testing.T) {
	t.Parallel()

	// Parse resolves language_name, so it must stay bounded as well.
	b := mustParse(t, "en-US", expandingCatalog(9))
	assert.Less(t, len(b.Name()), 1000)

	got, warnings, err := b.Format("bomb", l10n.Args{"x": "y"})
	require.NoError(t, err)
	assert.Less(t, len(got), 1000)
	assert.True(t, strings.HasPrefix(got, "y x x"))
	assert.True(t, strings.HasSuffix(got, "{???}"))
	require.Len(t, warnings, 1)
	assert.ErrorIs(t, warnings[0], l10n.ErrTooManyPlaceables)

	// A small expansion stays within the budget.
	got, warnings, err = b.Format("l1", nil)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Equal(t, strings.TrimSpace(strings.Repeat("x ", 10)), got)
}
