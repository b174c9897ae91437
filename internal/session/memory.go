package session

import (
	"context"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// MemoryStore keeps sessions in a bounded, expiring LRU. It is used when no
// Redis address is configured.
type MemoryStore struct {
	cache *expirable.LRU[string, State]
}

func NewMemoryStore(size int, ttl time.Duration) *MemoryStore {
	return &MemoryStore{cache: expirable.NewLRU[string, State](size, nil, ttl)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	st, ok := s.cache.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	st = clone(st)
	return &st, nil
}

func (s *MemoryStore) Save(_ context.Context, id string, st *State) error {
	s.cache.Add(id, clone(*st))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.cache.Remove(id)
	return nil
}

// clone detaches the settings pointer so callers never share cached state.
func clone(st State) State {
	if st.Settings != nil {
		settings := *st.Settings
		st.Settings = &settings
	}
	return st
}
