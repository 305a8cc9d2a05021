// Package audit appends an immutable before/after record of every accepted
// mutation. It is a best-effort side channel: nothing in here may fail or
// block the business operation it describes.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Operations recorded against an entity.
const (
	OpCreate = "CREATE"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Entry is a single immutable audit fact. Entries are never updated or
// deleted; retention is someone else's problem.
type Entry struct {
	ID         int64
	Operation  string
	EntityType string
	EntityID   string
	Details    string
	CreatedAt  time.Time
}

// Store is where entries land.
type Store interface {
	Append(ctx context.Context, e Entry) Entry
	FindByEntity(ctx context.Context, entityType, entityID string) []Entry
}

// Recorder renders before/after snapshots into a detail string and appends an
// entry. A snapshot that cannot be serialized is replaced with a placeholder
// message instead of aborting the mutation being audited.
type Recorder struct {
	store   Store
	marshal func(v any) ([]byte, error)
}

func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store, marshal: json.Marshal}
}

// Record appends one entry for the mutation. A nil before snapshot marks a
// creation, a nil after snapshot a deletion.
func (r *Recorder) Record(ctx context.Context, operation, entityType, entityID string, before, after any) {
	noun := strings.ToLower(entityType)

	var details string

	switch {
	case before == nil:
		details = fmt.Sprintf("Created %s: %s", noun, r.snapshot(after))
	case after == nil:
		details = fmt.Sprintf("Deleted %s: %s", noun, r.snapshot(before))
	default:
		details = fmt.Sprintf("Updated %s from: %s to: %s", noun, r.snapshot(before), r.snapshot(after))
	}

	r.store.Append(ctx, Entry{
		Operation:  operation,
		EntityType: entityType,
		EntityID:   entityID,
		Details:    details,
	})
}

// FindByEntity returns every entry recorded against the entity, in append
// order.
func (r *Recorder) FindByEntity(ctx context.Context, entityType, entityID string) []Entry {
	return r.store.FindByEntity(ctx, entityType, entityID)
}

func (r *Recorder) snapshot(v any) string {
	b, err := r.marshal(v)
	if err != nil {
		return "failed to serialize: " + err.Error()
	}

	return string(b)
}
