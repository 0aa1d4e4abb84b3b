package l10n

import (
	"sync"

	"golang.org/x/sync/singleflight"
)

// memoizer caches values built on first use. It is safe for concurrent use:
// callers that miss on the same key at the same time share one build.
type memoizer[V any] struct {
	values sync.Map
	group  singleflight.Group
}

func (m *memoizer[V]) get(key string, build func() V) V {
	if v, ok := m.values.Load(key); ok {
		return v.(V)
	}
	v, _, _ := m.group.Do(key, func() (any, error) {
		if v, ok := m.values.Load(key); ok {
			return v, nil
		}
		built := build()
		m.values.Store(key, built)
		return built, nil
	})
	return v.(V)
}
