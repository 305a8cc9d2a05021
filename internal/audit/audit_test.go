package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harborbank/ledger/internal/audit"
	"github.com/harborbank/ledger/internal/audit/store"
)

type snapshot struct {
	Category    string `json:"category"`
	Description string `json:"description"`
}

func TestRecorder_Update(t *testing.T) {
	s := store.New()
	r := audit.NewRecorder(s)
	ctx := context.Background()

	before := snapshot{Category: "SALARY", Description: "old"}
	after := snapshot{Category: "SHOPPING", Description: "new"}

	r.Record(ctx, audit.OpUpdate, "Transaction", "7", before, after)

	entries := r.FindByEntity(ctx, "Transaction", "7")
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, int64(1), e.ID)
	assert.Equal(t, audit.OpUpdate, e.Operation)
	assert.Contains(t, e.Details, "Updated transaction from: ")
	assert.Contains(t, e.Details, `"SALARY"`)
	assert.Contains(t, e.Details, " to: ")
	assert.Contains(t, e.Details, `"SHOPPING"`)
	assert.False(t, e.CreatedAt.IsZero())
}

func TestRecorder_CreateAndDelete(t *testing.T) {
	s := store.New()
	r := audit.NewRecorder(s)
	ctx := context.Background()

	r.Record(ctx, audit.OpCreate, "Transaction", "7", nil, snapshot{Category: "SALARY"})
	r.Record(ctx, audit.OpDelete, "Transaction", "7", snapshot{Category: "SALARY"}, nil)

	entries := r.FindByEntity(ctx, "Transaction", "7")
	require.Len(t, entries, 2)

	assert.Contains(t, entries[0].Details, "Created transaction: ")
	assert.Contains(t, entries[1].Details, "Deleted transaction: ")
	assert.Contains(t, entries[1].Details, `"SALARY"`)
	assert.Greater(t, entries[1].ID, entries[0].ID)
}

func TestRecorder_SerializationFailureIsAbsorbed(t *testing.T) {
	s := store.New()
	r := audit.NewRecorder(s)
	ctx := context.Background()

	// Channels have no JSON encoding; the snapshot must degrade to a
	// placeholder instead of failing the mutation being audited.
	r.Record(ctx, audit.OpDelete, "Transaction", "7", make(chan int), nil)

	entries := r.FindByEntity(ctx, "Transaction", "7")
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Details, "failed to serialize: ")
}

func TestFindByEntity_Filters(t *testing.T) {
	s := store.New()
	r := audit.NewRecorder(s)
	ctx := context.Background()

	r.Record(ctx, audit.OpCreate, "Transaction", "1", nil, snapshot{})
	r.Record(ctx, audit.OpCreate, "Transaction", "2", nil, snapshot{})
	r.Record(ctx, audit.OpCreate, "Account", "1", nil, snapshot{})

	assert.Len(t, r.FindByEntity(ctx, "Transaction", "1"), 1)
	assert.Len(t, r.FindByEntity(ctx, "Transaction", "2"), 1)
	assert.Empty(t, r.FindByEntity(ctx, "Transaction", "3"))
	assert.Len(t, r.FindByEntity(ctx, "Account", "1"), 1)
}
