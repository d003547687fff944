package store

import (
	"context"
	"errors"
	"time"
)

// Document is one record within a collection. The "id" field is injected by
// the store; everything else is whatever the caller persisted.
type Document map[string]any

// ID returns the injected identifier, or "" if the document has none.
func (d Document) ID() string {
	id, _ := d["id"].(string)
	return id
}

// OrderSpec describes the sort applied to a List/Find result.
type OrderSpec struct {
	Field string
	Desc  bool
}

// Filter is an equality match on top-level document fields.
type Filter map[string]any

// ErrNotFound is returned when an identifier does not resolve to a document.
var ErrNotFound = errors.New("document not found")

// CreatedDateField is the server-assigned creation timestamp field, stored as
// UTC RFC3339 so lexicographic and chronological order agree.
const CreatedDateField = "created_date"

// Store is a document store addressed by collection name. Implementations are
// safe for concurrent use. Delete is idempotent: removing a missing id is not
// an error. Update of a missing id returns ErrNotFound.
type Store interface {
	// List returns documents ordered by order; limit <= 0 means no limit.
	// An empty collection yields an empty slice and a nil error.
	List(ctx context.Context, collection string, order OrderSpec, limit int) ([]Document, error)

	// Find is List restricted to documents whose fields equal filter.
	Find(ctx context.Context, collection string, filter Filter, order OrderSpec, limit int) ([]Document, error)

	// Get returns a single document by id.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create persists data with a fresh id and a server-assigned created_date,
	// returning the stored document.
	Create(ctx context.Context, collection string, data map[string]any) (Document, error)

	// Update merges patch into an existing document. Fields absent from patch
	// retain their prior values.
	Update(ctx context.Context, collection, id string, patch map[string]any) (Document, error)

	// Delete removes the document with the given id, if present.
	Delete(ctx context.Context, collection, id string) error

	// Upsert updates the single document matching filter, or creates one from
	// filter+data when none matches. At most one document matching filter will
	// exist afterwards.
	Upsert(ctx context.Context, collection string, filter Filter, data map[string]any) (Document, error)

	// CreateExclusive clears flagField on every document in the collection and
	// creates data with flagField set true, atomically. Afterwards the new
	// document is the only one with the flag set.
	CreateExclusive(ctx context.Context, collection, flagField string, data map[string]any) (Document, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases the underlying connections.
	Close()
}

// Now is the timestamp source for created_date; tests may override it.
var Now = func() time.Time { return time.Now().UTC() }

// Timestamp renders a server-assigned timestamp value.
func Timestamp() string {
	return Now().Format(time.RFC3339Nano)
}
