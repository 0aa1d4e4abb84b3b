package l10n

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// ParseFunc turns one file into a bundle. Parse is the default for catalogs.
type ParseFunc func(data []byte, stem string, opts ...Option) (*Bundle, error)

// Loader dispatches catalog files to a parser by extension and stages the
// resulting bundles.
type Loader struct {
	parsers     map[string]ParseFunc
	opts        []Option
	logger      *slog.Logger
	concurrency int
}

// NewLoader returns a loader that handles `.ftl` and `.cat` files. opts are
// also passed to every ParseFunc.
func NewLoader(opts ...Option) *Loader {
	o := newOptions(opts)
	return &Loader{
		parsers: map[string]ParseFunc{
			".ftl": Parse,
			".cat": Parse,
		},
		opts:        opts,
		logger:      o.logger,
		concurrency: o.concurrency,
	}
}

// Register sets the parser for ext (with or without the leading dot).
func (l *Loader) Register(ext string, fn ParseFunc) {
	l.parsers[normalizeExt(ext)] = fn
}

// Extensions lists the handled extensions in sorted order.
func (l *Loader) Extensions() []string {
	exts := make([]string, 0, len(l.parsers))
	for ext := range l.parsers {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Supports reports whether name has a registered extension.
func (l *Loader) Supports(name string) bool {
	_, ok := l.parsers[normalizeExt(path.Ext(name))]
	return ok
}

// Load parses one file and stages the bundle under name. Parse errors are
// returned as is and nothing is staged.
func (l *Loader) Load(s *Staging, name string, data []byte) error {
	b, err := l.parse(name, data)
	if err != nil {
		return err
	}
	s.Add(Handle(name), b)
	return nil
}

func (l *Loader) parse(name string, data []byte) (*Bundle, error) {
	ext := path.Ext(name)
	fn, ok := l.parsers[normalizeExt(ext)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, name)
	}
	stem := strings.TrimSuffix(path.Base(name), ext)
	return fn(data, stem, l.opts...)
}

// LoadFS parses every supported file in fsys concurrently and stages the
// bundles in path order. Catalogs that fail to parse are logged and
// dropped; only read errors and context cancellation are returned.
func (l *Loader) LoadFS(ctx context.Context, fsys fs.FS, s *Staging) error {
	var paths []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !l.Supports(p) {
			return nil
		}
		paths = append(paths, p)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking catalogs: %w", err)
	}

	bundles := make([]*Bundle, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, p)
			if err != nil {
				return fmt.Errorf("reading %q: %w", p, err)
			}
			b, err := l.parse(p, data)
			if err != nil {
				l.logger.Error("dropping catalog that failed to load", "path", p, "error", err)
				return nil
			}
			bundles[i] = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, b := range bundles {
		if b != nil {
			s.Add(Handle(paths[i]), b)
		}
	}
	return nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
