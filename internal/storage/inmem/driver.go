package inmem

import (
	"context"
	"github.com/hashicorp/go-memdb"
	"github.com/kglearn/frontgate/internal/storage"
	"time"
)

const tableRecords = "records"

var dbSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableRecords: {
			Name: tableRecords,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:         "id",
					Unique:       true,
					AllowMissing: false,
					Indexer: &memdb.CompoundIndex{
						Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "ClientHash"},
							&memdb.StringFieldIndex{Field: "Key"},
						},
					},
				},
				"client": {
					Name:         "client",
					Unique:       false,
					AllowMissing: false,
					Indexer:      &memdb.StringFieldIndex{Field: "ClientHash"},
				},
			},
		},
	},
}

// Driver represents the in-memory client record storage driver built using hashicorp/go-memdb
type Driver struct {
	db *memdb.MemDB

	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

var _ storage.Driver = (*Driver)(nil)

// New creates a new in-memory storage driver.
// Use Initialize to create the underlying database.
func New() *Driver {
	return new(Driver)
}

// Initialize creates the empty in-memory database
func (driver *Driver) Initialize(_ context.Context) error {
	db, err := memdb.NewMemDB(dbSchema)
	if err != nil {
		return err
	}
	driver.db = db
	return nil
}

// Client provides the record store of a single client
func (driver *Driver) Client(clientHash string) storage.Store {
	return &clientStore{
		db:   driver.db,
		hash: clientHash,
	}
}

// TerminateExpired removes the records of all clients whose stored token is expired
func (driver *Driver) TerminateExpired(_ context.Context) (int, error) {
	now := time.Now
	if driver.Now != nil {
		now = driver.Now
	}
	deadline := now().UnixMilli()

	txn := driver.db.Txn(true)
	defer txn.Abort()

	it, err := txn.Get(tableRecords, "id")
	if err != nil {
		return 0, err
	}
	var expired []string
	for obj := it.Next(); obj != nil; obj = it.Next() {
		record := obj.(*storage.Record)
		if record.Key == storage.KeyToken && record.Expires > 0 && record.Expires <= deadline {
			expired = append(expired, record.ClientHash)
		}
	}

	for _, hash := range expired {
		if _, err := txn.DeleteAll(tableRecords, "client", hash); err != nil {
			return 0, err
		}
	}

	txn.Commit()
	return len(expired), nil
}

// Close discards the underlying database
func (driver *Driver) Close() {
	driver.db = nil
}

type clientStore struct {
	db   *memdb.MemDB
	hash string
}

var _ storage.Store = (*clientStore)(nil)

func (store *clientStore) Get(_ context.Context, key string) (string, bool, error) {
	txn := store.db.Txn(false)
	obj, err := txn.First(tableRecords, "id", store.hash, key)
	if err != nil {
		return "", false, err
	}
	if obj == nil {
		return "", false, nil
	}
	return obj.(*storage.Record).Value, true, nil
}

func (store *clientStore) Set(_ context.Context, key, value string) error {
	txn := store.db.Txn(true)
	defer txn.Abort()
	if err := txn.Insert(tableRecords, storage.NewRecord(store.hash, key, value)); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

func (store *clientStore) Remove(_ context.Context, key string) error {
	txn := store.db.Txn(true)
	defer txn.Abort()
	if _, err := txn.DeleteAll(tableRecords, "id", store.hash, key); err != nil {
		return err
	}
	txn.Commit()
	return nil
}
