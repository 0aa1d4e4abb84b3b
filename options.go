package l10n

import (
	"log/slog"
	"runtime"
)

const (
	// DefaultLanguage is the baseline language every program must ship.
	DefaultLanguage = "en-US"

	// LanguageNameID is the reserved message holding a catalog's display name.
	LanguageNameID = "language_name"
)

type options struct {
	logger          *slog.Logger
	defaultLanguage string
	functions       map[string]Function
	concurrency     int
}

// Option configures Parse, Loader, NewRegistry and Install.
// Options that do not apply to a constructor are ignored by it.
type Option func(*options)

func newOptions(opts []Option) options {
	o := options{
		defaultLanguage: DefaultLanguage,
		concurrency:     runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return o
}

// WithLogger sets the logger used for warnings. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDefaultLanguage overrides the language the registry activates.
func WithDefaultLanguage(tag string) Option {
	return func(o *options) {
		o.defaultLanguage = tag
	}
}

// WithFunction makes fn callable from catalogs as NAME(...).
// It replaces a built-in of the same name. fn must be pure: a call whose
// arguments do not come from the caller is rendered once and cached.
func WithFunction(name string, fn Function) Option {
	return func(o *options) {
		if o.functions == nil {
			o.functions = make(map[string]Function)
		}
		o.functions[name] = fn
	}
}

// WithConcurrency limits how many catalogs LoadFS parses at once.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}
