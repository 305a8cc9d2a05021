// Package store is the in-memory transaction store. It owns every stored
// record: callers always receive copies, so the only way to change stored
// state is through the versioned Update contract.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harborbank/ledger/internal/transaction"
)

// entry pairs a stored record with its own lock, so updates to different ids
// never serialize against each other. The deleted flag closes the race where
// an update loads an entry that a concurrent delete is removing.
type entry struct {
	mu      sync.Mutex
	deleted bool
	txn     transaction.Transaction
}

type Store struct {
	records  sync.Map // id -> *entry
	orderIDs orderIDIndex
	idSeq    atomic.Int64
	size     atomic.Int64
}

func New() *Store {
	return &Store{}
}

// Insert claims the order ID, assigns a fresh id and stores the record.
// Returns transaction.ErrDuplicateOrderID when the order ID is already held
// by a live record; in that case nothing is stored.
func (s *Store) Insert(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	if !s.orderIDs.register(tx.OrderID) {
		return nil, fmt.Errorf("order %s: %w", tx.OrderID, transaction.ErrDuplicateOrderID)
	}

	cp := *tx
	cp.ID = s.idSeq.Add(1)
	now := time.Now()
	cp.CreatedAt = now
	cp.UpdatedAt = now
	cp.Version = transaction.InitialVersion

	// Bind before publishing the record. The other order leaves a window
	// where a concurrent scan-and-delete removes the record and releases the
	// order ID, after which the late bind would resurrect the mapping and
	// leak the order ID for good.
	s.orderIDs.bind(cp.OrderID, cp.ID)
	s.size.Add(1)
	s.records.Store(cp.ID, &entry{txn: cp})

	out := cp

	return &out, nil
}

// FindByID returns a copy of the record, or transaction.ErrNotFound.
func (s *Store) FindByID(ctx context.Context, id int64) (*transaction.Transaction, error) {
	v, ok := s.records.Load(id)
	if !ok {
		return nil, transaction.ErrNotFound
	}

	e := v.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, transaction.ErrNotFound
	}

	cp := e.txn

	return &cp, nil
}

// FindByOrderID resolves the order ID through the uniqueness index.
func (s *Store) FindByOrderID(ctx context.Context, orderID string) (*transaction.Transaction, error) {
	id, ok := s.orderIDs.lookup(orderID)
	if !ok {
		return nil, transaction.ErrNotFound
	}

	return s.FindByID(ctx, id)
}

// Update is the optimistic-concurrency write. The version check and the
// replacement happen under the entry lock, so of two racing updates carrying
// the same version exactly one succeeds and the other observes a
// *transaction.VersionConflictError. ID, OrderID and CreatedAt of the stored
// record are preserved regardless of what the caller passed in.
func (s *Store) Update(ctx context.Context, tx *transaction.Transaction) (*transaction.Transaction, error) {
	v, ok := s.records.Load(tx.ID)
	if !ok {
		return nil, transaction.ErrNotFound
	}

	e := v.(*entry)

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.deleted {
		return nil, transaction.ErrNotFound
	}

	if e.txn.Version != tx.Version {
		return nil, &transaction.VersionConflictError{
			ID:        tx.ID,
			Current:   e.txn.Version,
			Requested: tx.Version,
		}
	}

	cp := *tx
	cp.OrderID = e.txn.OrderID
	cp.CreatedAt = e.txn.CreatedAt
	cp.Version = e.txn.Version + 1

	cp.UpdatedAt = time.Now()
	if !cp.UpdatedAt.After(e.txn.UpdatedAt) {
		// Coarse clocks can hand out equal readings for back-to-back updates.
		cp.UpdatedAt = e.txn.UpdatedAt.Add(time.Nanosecond)
	}

	e.txn = cp
	out := cp

	return &out, nil
}

// Scan returns copies of the live records in id order, windowed by offset and
// limit. Out-of-range offsets yield an empty slice, never an error.
func (s *Store) Scan(ctx context.Context, offset, limit int) ([]*transaction.Transaction, error) {
	if limit <= 0 {
		return nil, nil
	}

	if offset < 0 {
		offset = 0
	}

	var all []*transaction.Transaction

	s.records.Range(func(_, v any) bool {
		e := v.(*entry)

		e.mu.Lock()
		if !e.deleted {
			cp := e.txn
			all = append(all, &cp)
		}
		e.mu.Unlock()

		return true
	})

	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })

	if offset >= len(all) {
		return nil, nil
	}

	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	return all[offset:end], nil
}

// Count returns the number of live records.
func (s *Store) Count(ctx context.Context) (int64, error) {
	return s.size.Load(), nil
}

// DeleteByID removes the record and frees its order ID for reuse. It reports
// whether a record was actually removed: deleting an absent id is a no-op,
// not an error, and whether the caller treats a false result as one is the
// service's call. Of two racing deletes of the same id exactly one reports
// removal.
func (s *Store) DeleteByID(ctx context.Context, id int64) (bool, error) {
	v, ok := s.records.Load(id)
	if !ok {
		return false, nil
	}

	e := v.(*entry)

	e.mu.Lock()
	if e.deleted {
		e.mu.Unlock()
		return false, nil
	}

	e.deleted = true
	orderID := e.txn.OrderID
	e.mu.Unlock()

	s.records.Delete(id)
	s.orderIDs.release(orderID)
	s.size.Add(-1)

	return true, nil
}

// Clear resets records, index and id generator. Test and reset utility only;
// ids restart from 1 afterwards.
func (s *Store) Clear(ctx context.Context) {
	s.records.Range(func(k, _ any) bool {
		s.records.Delete(k)
		return true
	})
	s.orderIDs.reset()
	s.idSeq.Store(0)
	s.size.Store(0)
}
