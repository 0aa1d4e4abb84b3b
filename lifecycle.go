package l10n

import (
	"sync"
)

// Handle identifies a staged catalog, usually by its path.
type Handle string

// Staging collects bundles while the host is still loading. It is safe for
// concurrent Add calls and is emptied by Install.
type Staging struct {
	mu      sync.Mutex
	entries []staged
}

type staged struct {
	handle Handle
	bundle *Bundle
}

func NewStaging() *Staging {
	return &Staging{}
}

// Add stages a successfully parsed bundle.
func (s *Staging) Add(h Handle, b *Bundle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, staged{handle: h, bundle: b})
}

func (s *Staging) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Handles lists staged catalogs in the order they were added.
func (s *Staging) Handles() []Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Handle, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.handle
	}
	return out
}

func (s *Staging) drain() []*Bundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	bundles := make([]*Bundle, len(s.entries))
	for i, e := range s.entries {
		bundles[i] = e.bundle
	}
	s.entries = nil
	return bundles
}

// Install runs once, when the host leaves its loading phase: it moves every
// staged bundle into a new Registry and leaves s empty. Calling it a second
// time for the same run is not supported.
func Install(s *Staging, opts ...Option) (*Registry, error) {
	return NewRegistry(s.drain(), opts...)
}

// MustInstall is Install for program startup; it panics when the default
// language is missing.
func MustInstall(s *Staging, opts ...Option) *Registry {
	r, err := Install(s, opts...)
	if err != nil {
		panic(err)
	}
	return r
}
