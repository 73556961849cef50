// Package mock provides in-memory implementations of the store interfaces
// for testing.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/evanly-gh/remember-me/internal/roster"
	"github.com/evanly-gh/remember-me/internal/store"
)

// RecordStore is an in-memory implementation of store.RecordStore.
type RecordStore struct {
	mu      sync.RWMutex
	records map[string]*roster.PhotoRecord
	clock   time.Time

	// Error injection
	InsertError error
	ListError   error
	GetError    error
	UpdateError error
	DeleteError error
}

// NewRecordStore creates a new mock record store.
func NewRecordStore() *RecordStore {
	return &RecordStore{
		records: make(map[string]*roster.PhotoRecord),
		clock:   time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

// AddRecord seeds a record directly, bypassing Insert.
func (s *RecordStore) AddRecord(rec roster.PhotoRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.ID] = &rec
}

// Insert stores a new record with a generated ID and advancing timestamp.
func (s *RecordStore) Insert(ctx context.Context, rec store.NewRecord) (*roster.PhotoRecord, error) {
	if s.InsertError != nil {
		return nil, s.InsertError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock = s.clock.Add(time.Second)
	stored := &roster.PhotoRecord{
		ID:        uuid.NewString(),
		OwnerID:   rec.OwnerID,
		Name:      rec.Name,
		PhotoURL:  rec.PhotoURL,
		Event:     rec.Event,
		Location:  rec.Location,
		Date:      rec.Date,
		CreatedAt: s.clock,
	}
	s.records[stored.ID] = stored

	result := *stored
	return &result, nil
}

// ListByOwner returns all records belonging to an owner.
func (s *RecordStore) ListByOwner(ctx context.Context, ownerID string) ([]roster.PhotoRecord, error) {
	if s.ListError != nil {
		return nil, s.ListError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []roster.PhotoRecord
	for _, rec := range s.records {
		if rec.OwnerID == ownerID {
			result = append(result, *rec)
		}
	}
	return result, nil
}

// Get returns one record, owner-scoped.
func (s *RecordStore) Get(ctx context.Context, ownerID, id string) (*roster.PhotoRecord, error) {
	if s.GetError != nil {
		return nil, s.GetError
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok || rec.OwnerID != ownerID {
		return nil, store.ErrRecordNotFound
	}
	result := *rec
	return &result, nil
}

// Update replaces the editable fields of one record.
func (s *RecordStore) Update(ctx context.Context, ownerID, id string, fields store.RecordFields) error {
	if s.UpdateError != nil {
		return s.UpdateError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.OwnerID != ownerID {
		return store.ErrRecordNotFound
	}
	rec.Name = fields.Name
	rec.Event = fields.Event
	rec.Location = fields.Location
	rec.Date = fields.Date
	return nil
}

// Delete removes one record.
func (s *RecordStore) Delete(ctx context.Context, ownerID, id string) error {
	if s.DeleteError != nil {
		return s.DeleteError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok || rec.OwnerID != ownerID {
		return store.ErrRecordNotFound
	}
	delete(s.records, id)
	return nil
}

// Count returns the number of stored records across all owners.
func (s *RecordStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// BlobStore is an in-memory implementation of store.BlobStore.
type BlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte

	// Error injection
	SaveError error
}

// NewBlobStore creates a new mock blob store.
func NewBlobStore() *BlobStore {
	return &BlobStore{blobs: make(map[string][]byte)}
}

// Save stores the blob and returns a fake public URL.
func (s *BlobStore) Save(ctx context.Context, ownerID, key string, data []byte, contentType string) (string, error) {
	if s.SaveError != nil {
		return "", s.SaveError
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	path := fmt.Sprintf("%s/%s", ownerID, key)
	s.blobs[path] = data
	return "https://blobs.test/" + path, nil
}

// Blob returns a stored blob by owner and key.
func (s *BlobStore) Blob(ownerID, key string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[ownerID+"/"+key]
	return data, ok
}

// Count returns the number of stored blobs.
func (s *BlobStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}
