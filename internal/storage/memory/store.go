package memory

import (
	"context"
	"github.com/kglearn/frontgate/internal/hashmap"
	"github.com/kglearn/frontgate/internal/storage"
)

// Store implements storage.Store for a single client entirely in memory
type Store struct {
	records *hashmap.NormalMap[string, string]
}

var _ storage.Store = (*Store)(nil)

// New creates a new empty in-memory store
func New() *Store {
	return &Store{
		records: hashmap.NewNormal[string, string](),
	}
}

// NewWith creates a new in-memory store pre-populated with the given records
func NewWith(records map[string]string) *Store {
	store := New()
	for key, value := range records {
		store.records.Set(key, value)
	}
	return store
}

// Get retrieves the value stored under key
func (store *Store) Get(_ context.Context, key string) (string, bool, error) {
	value, ok := store.records.Lookup(key)
	return value, ok, nil
}

// Set stores a value under key
func (store *Store) Set(_ context.Context, key, value string) error {
	store.records.Set(key, value)
	return nil
}

// Remove deletes the value stored under key
func (store *Store) Remove(_ context.Context, key string) error {
	store.records.Unset(key)
	return nil
}

// Snapshot returns a copy of all stored records
func (store *Store) Snapshot() map[string]string {
	return store.records.Snapshot()
}
