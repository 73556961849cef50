// Package store defines the persistence collaborators consumed by the core:
// a record store for photo records and a blob store for the photo bytes.
//
// Every operation takes the owner identity explicitly. There is no ambient
// "current user"; a store call without an owner cannot be written.
package store

import (
	"context"
	"errors"

	"github.com/evanly-gh/remember-me/internal/roster"
)

// ErrRecordNotFound is returned when a record does not exist for the given
// owner. A record belonging to a different owner is indistinguishable from a
// missing one.
var ErrRecordNotFound = errors.New("record not found")

// NewRecord is the insert input. ID and CreatedAt are assigned by the store.
// Empty optional fields are stored as NULL, never as the empty string.
type NewRecord struct {
	OwnerID  string
	Name     string
	PhotoURL string
	Event    string
	Location string
	Date     string
}

// RecordFields are the user-editable fields of an existing record.
// The photo reference and creation timestamp are immutable.
type RecordFields struct {
	Name     string
	Event    string
	Location string
	Date     string
}

// RecordStore persists photo records, scoped by owner on every operation.
type RecordStore interface {
	// Insert stores a new record and returns it with ID and CreatedAt set.
	Insert(ctx context.Context, rec NewRecord) (*roster.PhotoRecord, error)
	// ListByOwner returns all records belonging to an owner.
	ListByOwner(ctx context.Context, ownerID string) ([]roster.PhotoRecord, error)
	// Get returns one record by ID, or ErrRecordNotFound.
	Get(ctx context.Context, ownerID, id string) (*roster.PhotoRecord, error)
	// Update replaces the editable fields of one record.
	Update(ctx context.Context, ownerID, id string, fields RecordFields) error
	// Delete removes one record.
	Delete(ctx context.Context, ownerID, id string) error
}

// BlobStore persists photo bytes under owner-scoped keys and returns a
// durable public URL for each stored blob.
type BlobStore interface {
	Save(ctx context.Context, ownerID, key string, data []byte, contentType string) (string, error)
}
