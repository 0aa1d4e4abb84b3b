package l10n

import (
	"log/slog"
)

///////////////////////////////////////////////////////////////////////////////
// LOCALIZATION REGISTRY
///////////////////////////////////////////////////////////////////////////////

// Registry holds every loaded bundle and the active language. It is built
// once when loading completes and is read-only afterwards, so it can be
// shared between goroutines without locking.
type Registry struct {
	bundles []*Bundle
	active  int
	logger  *slog.Logger
}

// Language describes one installed catalog.
type Language struct {
	Tag  Tag
	Name string
}

// NewRegistry activates the bundle matching the default language (en-US
// unless WithDefaultLanguage says otherwise). If no bundle matches, it
// returns a *MissingDefaultLanguageError; callers should treat that as fatal.
func NewRegistry(bundles []*Bundle, opts ...Option) (*Registry, error) {
	o := newOptions(opts)
	want, err := ParseTag(o.defaultLanguage)
	if err != nil {
		return nil, err
	}

	for i, b := range bundles {
		if b.Tag() == want {
			r := &Registry{bundles: bundles, active: i, logger: o.logger}
			r.logger.Info("localization ready",
				"language", want.String(), "name", b.Name(), "languages", len(bundles))
			return r, nil
		}
	}

	loaded := make([]Tag, len(bundles))
	for i, b := range bundles {
		loaded[i] = b.Tag()
	}
	return nil, &MissingDefaultLanguageError{Want: want, Loaded: loaded}
}

// Localize renders id in the active language, or returns id itself when
// that is not possible.
func (r *Registry) Localize(id string) string {
	return r.LocalizeWithArgs(id, nil)
}

// LocalizeWithArgs renders id with args in the active language. Any failure
// is logged and the raw id is returned instead.
func (r *Registry) LocalizeWithArgs(id string, args Args) string {
	text, err := r.Active().Lookup(id, args)
	if err != nil {
		r.logger.Warn("showing message id instead of translation", "error", err)
		return id
	}
	if text == "" {
		r.logger.Warn("translation is empty, showing message id instead",
			"id", id, "language", r.Active().Tag().String())
		return id
	}
	return text
}

// Active returns the bundle used by Localize.
func (r *Registry) Active() *Bundle {
	return r.bundles[r.active]
}

// Bundle returns the first loaded bundle for tag.
func (r *Registry) Bundle(tag Tag) (*Bundle, bool) {
	for _, b := range r.bundles {
		if b.Tag() == tag {
			return b, true
		}
	}
	return nil, false
}

// Languages lists the installed languages in load order.
func (r *Registry) Languages() []Language {
	out := make([]Language, len(r.bundles))
	for i, b := range r.bundles {
		out[i] = Language{Tag: b.Tag(), Name: b.Name()}
	}
	return out
}
