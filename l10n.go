package l10n

// Args are the named arguments substituted into `{ $name }` placeables.
type Args map[string]string

// Localizer is what call sites receive instead of reaching for global state.
// Both methods always return something renderable.
type Localizer interface {
	Localize(id string) string
	LocalizeWithArgs(id string, args Args) string
}

var _ Localizer = (*Registry)(nil)
