package transaction

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/shopspring/decimal"

	"github.com/harborbank/ledger/internal/audit"
)

//go:generate mockgen -source=service.go -destination=service_mock.go -package=transaction
type Repository interface {
	Insert(ctx context.Context, tx *Transaction) (*Transaction, error)
	FindByID(ctx context.Context, id int64) (*Transaction, error)
	Scan(ctx context.Context, offset, limit int) ([]*Transaction, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, tx *Transaction) (*Transaction, error)
	DeleteByID(ctx context.Context, id int64) (bool, error)
}

// AuditRecorder receives before/after snapshots of accepted mutations. It is
// best effort and must never fail the mutation it describes.
type AuditRecorder interface {
	Record(ctx context.Context, operation, entityType, entityID string, before, after any)
}

// BalanceChecker is the external account service, consulted before inserting
// debit-type transactions.
type BalanceChecker interface {
	HasSufficientBalance(ctx context.Context, accountID string, amount decimal.Decimal) bool
}

const (
	entityType = "Transaction"

	defaultMaxUpdateAttempts = 3
	defaultBackoffCeiling    = 100 * time.Millisecond

	maxPageSize = 100
)

// Config tunes the service. Zero values fall back to defaults; a nil Cache
// disables read caching.
type Config struct {
	MaxUpdateAttempts int
	BackoffCeiling    time.Duration
	Cache             *ristretto.Cache

	// Sleep is the backoff used between update retries. Injectable so tests
	// run without wall-clock delays.
	Sleep func(ctx context.Context, d time.Duration) error
}

type Service struct {
	repo        Repository
	audit       AuditRecorder
	balance     BalanceChecker
	cache       *ristretto.Cache
	maxAttempts int
	ceiling     time.Duration
	sleep       func(ctx context.Context, d time.Duration) error
}

func NewService(repo Repository, auditor AuditRecorder, balance BalanceChecker, cfg Config) *Service {
	s := &Service{
		repo:        repo,
		audit:       auditor,
		balance:     balance,
		cache:       cfg.Cache,
		maxAttempts: cfg.MaxUpdateAttempts,
		ceiling:     cfg.BackoffCeiling,
		sleep:       cfg.Sleep,
	}

	if s.maxAttempts <= 0 {
		s.maxAttempts = defaultMaxUpdateAttempts
	}

	if s.ceiling <= 0 {
		s.ceiling = defaultBackoffCeiling
	}

	if s.sleep == nil {
		s.sleep = sleepContext
	}

	return s
}

type CreateParams struct {
	OrderID     string
	AccountID   string
	Amount      decimal.Decimal
	Type        string
	Category    string
	Description string
}

// Create validates the fields, checks the account balance for debit types and
// inserts the transaction.
func (s *Service) Create(ctx context.Context, params CreateParams) (*Transaction, error) {
	tx, err := New(params.OrderID, params.AccountID, params.Amount, params.Type, params.Category, params.Description)
	if err != nil {
		return nil, err
	}

	if tx.Type.IsDebit() && !s.balance.HasSufficientBalance(ctx, tx.AccountID, tx.Amount) {
		return nil, fmt.Errorf("account %s cannot cover amount %s: %w",
			tx.AccountID, tx.Amount, ErrInsufficientBalance)
	}

	stored, err := s.repo.Insert(ctx, tx)
	if err != nil {
		return nil, err
	}

	s.cacheSet(stored)
	s.audit.Record(ctx, audit.OpCreate, entityType, formatID(stored.ID), nil, stored)

	return stored, nil
}

// Get returns the transaction by id, serving from the read cache when it can.
func (s *Service) Get(ctx context.Context, id int64) (*Transaction, error) {
	if tx, ok := s.cacheGet(id); ok {
		return tx, nil
	}

	tx, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cacheSet(tx)

	return tx, nil
}

type UpdateParams struct {
	Category    string
	Description string
}

// Update changes the mutable fields of a transaction through a bounded
// read-modify-write loop. Version conflicts are retried with a jittered
// backoff up to the attempt budget; NotFound and validation failures are
// terminal and never retried. A conflict surviving the whole budget is
// surfaced to the caller, not swallowed.
func (s *Service) Update(ctx context.Context, id int64, params UpdateParams) (*Transaction, error) {
	category, err := ParseCategory(params.Category)
	if err != nil {
		return nil, &InvalidError{Violations: []string{invalidCategoryViolation}}
	}

	if len(params.Description) > maxDescriptionLength {
		return nil, &InvalidError{Violations: []string{"Description cannot exceed 100 characters"}}
	}

	for attempt := 1; ; attempt++ {
		current, err := s.repo.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}

		before := *current

		mutated := *current
		mutated.Category = category
		mutated.Description = params.Description

		updated, err := s.repo.Update(ctx, &mutated)
		if err == nil {
			s.cacheSet(updated)
			s.audit.Record(ctx, audit.OpUpdate, entityType, formatID(id), &before, updated)

			return updated, nil
		}

		var conflict *VersionConflictError
		if !errors.As(err, &conflict) {
			return nil, err
		}

		if attempt >= s.maxAttempts {
			slog.Warn("update retry budget exhausted",
				"id", id, "attempts", attempt, "current_version", conflict.Current)

			return nil, err
		}

		// Random jitter decorrelates competing retriers.
		if err := s.sleep(ctx, time.Duration(rand.Int63n(int64(s.ceiling)))); err != nil {
			return nil, fmt.Errorf("interrupted while retrying update of transaction %d: %w", id, err)
		}
	}
}

// Delete removes the transaction. Unlike the store, the service treats an
// absent id as an error.
func (s *Service) Delete(ctx context.Context, id int64) error {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	removed, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}

	// A racing delete got there first; only the winner audits.
	if !removed {
		return ErrNotFound
	}

	s.cacheDel(id)
	s.audit.Record(ctx, audit.OpDelete, entityType, formatID(id), current, nil)

	return nil
}

// List returns one page of transactions in id order. Page numbers are
// 1-based; sizes are clamped to 100. An invalid page number or size yields an
// empty page with a zero total, a valid page past the end an empty page with
// the true total.
func (s *Service) List(ctx context.Context, pageNumber, pageSize int) (*Page, error) {
	if pageNumber < 1 || pageSize <= 0 {
		return NewPage(nil, pageNumber, pageSize, 0), nil
	}

	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	offset := (pageNumber - 1) * pageSize
	if int64(offset) >= total {
		return NewPage(nil, pageNumber, pageSize, total), nil
	}

	items, err := s.repo.Scan(ctx, offset, pageSize)
	if err != nil {
		return nil, err
	}

	return NewPage(items, pageNumber, pageSize, total), nil
}

func (s *Service) cacheGet(id int64) (*Transaction, bool) {
	if s.cache == nil {
		return nil, false
	}

	v, ok := s.cache.Get(id)
	if !ok {
		return nil, false
	}

	cp := *v.(*Transaction)

	return &cp, true
}

func (s *Service) cacheSet(tx *Transaction) {
	if s.cache == nil {
		return
	}

	cp := *tx
	s.cache.Set(tx.ID, &cp, 1)
}

func (s *Service) cacheDel(id int64) {
	if s.cache != nil {
		s.cache.Del(id)
	}
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
