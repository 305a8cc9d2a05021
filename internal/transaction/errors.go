package transaction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when an operation references a transaction id
	// that is not present in the store.
	ErrNotFound = errors.New("transaction not found")

	// ErrDuplicateOrderID is returned on insert when another live transaction
	// already carries the same order ID.
	ErrDuplicateOrderID = errors.New("transaction with order ID already exists")

	// ErrInsufficientBalance is returned when the account cannot cover a
	// debit-type transaction.
	ErrInsufficientBalance = errors.New("insufficient balance")
)

// VersionConflictError reports a lost-update race: the stored version moved on
// between the caller's read and its write. It is retryable at the service
// layer, up to the retry budget.
type VersionConflictError struct {
	ID        int64
	Current   int64
	Requested int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("transaction %d was updated by another user (current version %d, requested %d)",
		e.ID, e.Current, e.Requested)
}

// InvalidError carries every validation violation found in the input fields.
type InvalidError struct {
	Violations []string
}

func (e *InvalidError) Error() string {
	return "invalid transaction: " + strings.Join(e.Violations, "; ")
}
