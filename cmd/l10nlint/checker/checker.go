package checker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"github.com/lifei6671/l10n"
)

type Options struct {
	// Default is the language other catalogs are compared against.
	Default string
	Logger  *slog.Logger
}

// Issue is one syntax error located in a catalog.
type Issue struct {
	Line    int    `json:"line"    yaml:"line"    toml:"line"`
	Column  int    `json:"column"  yaml:"column"  toml:"column"`
	Message string `json:"message" yaml:"message" toml:"message"`
}

type Result struct {
	Default       string              `json:"default"                 yaml:"default"                 toml:"default"`
	Languages     []string            `json:"languages"               yaml:"languages"               toml:"languages"`
	MissingKeys   map[string][]string `json:"missing_keys,omitempty"   yaml:"missing_keys,omitempty"   toml:"missing_keys,omitempty"`
	RedundantKeys map[string][]string `json:"redundant_keys,omitempty" yaml:"redundant_keys,omitempty" toml:"redundant_keys,omitempty"`
	SyntaxErrors  map[string][]Issue  `json:"syntax_errors,omitempty"  yaml:"syntax_errors,omitempty"  toml:"syntax_errors,omitempty"` // file -> issues
	TagErrors     map[string]string   `json:"tag_errors,omitempty"     yaml:"tag_errors,omitempty"     toml:"tag_errors,omitempty"`    // file -> reason
	Unnamed       []string            `json:"unnamed,omitempty"        yaml:"unnamed,omitempty"        toml:"unnamed,omitempty"`
	DuplicateTags map[string][]string `json:"duplicate_tags,omitempty" yaml:"duplicate_tags,omitempty" toml:"duplicate_tags,omitempty"` // tag -> files, first one wins
	DefaultFound  bool                `json:"default_found"           yaml:"default_found"           toml:"default_found"`
	AllKeys       []string            `json:"all_keys"                yaml:"all_keys"                toml:"all_keys"`
}

// HasIssues reports whether anything in r should fail a lint run.
func (r *Result) HasIssues() bool {
	return !r.DefaultFound ||
		len(r.MissingKeys) > 0 ||
		len(r.RedundantKeys) > 0 ||
		len(r.SyntaxErrors) > 0 ||
		len(r.TagErrors) > 0 ||
		len(r.Unnamed) > 0 ||
		len(r.DuplicateTags) > 0
}

// CheckLocales parses every catalog in fsys and performs:
//  1. syntax, file name and duplicate language checks
//  2. key alignment against the default language (missing / redundant)
//  3. a language_name check per language
func CheckLocales(ctx context.Context, fsys fs.FS, opts Options) (*Result, error) {
	if opts.Default == "" {
		opts.Default = l10n.DefaultLanguage
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	want, err := l10n.ParseTag(opts.Default)
	if err != nil {
		return nil, err
	}

	loader := l10n.NewLoader()
	res := &Result{
		Default:       want.String(),
		MissingKeys:   make(map[string][]string),
		RedundantKeys: make(map[string][]string),
		SyntaxErrors:  make(map[string][]Issue),
		TagErrors:     make(map[string]string),
		DuplicateTags: make(map[string][]string),
	}

	bundles := make(map[string]*l10n.Bundle)
	files := make(map[string][]string)
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !loader.Supports(p) {
			return nil
		}
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		if b := checkFile(res, p, data, opts.Logger); b != nil {
			// Files are walked in path order; like the registry, the first one wins.
			tag := b.Tag().String()
			if _, ok := bundles[tag]; !ok {
				bundles[tag] = b
			}
			files[tag] = append(files[tag], p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for tag, paths := range files {
		if len(paths) > 1 {
			res.DuplicateTags[tag] = paths
		}
	}

	keys := make(map[string]map[string]struct{}, len(bundles))
	allKeysSet := make(map[string]struct{})
	for lang, b := range bundles {
		res.Languages = append(res.Languages, lang)
		kset := make(map[string]struct{})
		for _, id := range b.MessageIDs() {
			kset[id] = struct{}{}
			allKeysSet[id] = struct{}{}
		}
		keys[lang] = kset
		if b.Name() == l10n.LanguageNameID {
			res.Unnamed = append(res.Unnamed, lang)
		}
	}
	sort.Strings(res.Languages)
	sort.Strings(res.Unnamed)
	res.AllKeys = sortedKeys(allKeysSet)

	base, ok := keys[res.Default]
	res.DefaultFound = ok
	if ok {
		for lang, kset := range keys {
			if lang == res.Default {
				continue
			}
			for _, k := range sortedKeys(base) {
				if _, ok := kset[k]; !ok {
					res.MissingKeys[lang] = append(res.MissingKeys[lang], k)
				}
			}
			for _, k := range sortedKeys(kset) {
				if _, ok := base[k]; !ok {
					res.RedundantKeys[lang] = append(res.RedundantKeys[lang], k)
				}
			}
		}
	}

	return res, nil
}

func checkFile(res *Result, p string, data []byte, logger *slog.Logger) *l10n.Bundle {
	stem := strings.TrimSuffix(path.Base(p), path.Ext(p))

	resource, err := l10n.ParseResource(data, stem)
	var perr *l10n.ParseError
	if errors.As(err, &perr) {
		for _, se := range perr.Errors {
			res.SyntaxErrors[p] = append(res.SyntaxErrors[p], Issue{Line: se.Line, Column: se.Column, Message: se.Msg})
		}
		return nil
	}

	tag, err := l10n.ParseTag(stem)
	if err != nil {
		res.TagErrors[p] = err.Error()
		return nil
	}
	return l10n.NewBundle(tag, resource, l10n.WithLogger(logger))
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
