// Package store is the in-memory audit log: an append-only list with a
// per-entity query. Entries get their id on append and are never touched
// again.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/harborbank/ledger/internal/audit"
)

type Store struct {
	mu      sync.RWMutex
	nextID  int64
	entries []audit.Entry
}

func New() *Store {
	return &Store{}
}

func (s *Store) Append(ctx context.Context, e audit.Entry) audit.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID
	e.CreatedAt = time.Now()
	s.entries = append(s.entries, e)

	return e
}

func (s *Store) FindByEntity(ctx context.Context, entityType, entityID string) []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []audit.Entry

	for _, e := range s.entries {
		if e.EntityType == entityType && e.EntityID == entityID {
			out = append(out, e)
		}
	}

	return out
}
