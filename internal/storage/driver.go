package storage

import "context"

// Driver represents a server-side storage driver keeping the records of many clients
type Driver interface {
	// Initialize initializes the storage driver (i.e. opens a database connection)
	Initialize(ctx context.Context) error

	// Client provides the record store of the client identified by the given client ID hash (see secret.HashClientID)
	Client(clientHash string) Store

	// TerminateExpired removes the records of all clients whose stored token is expired and returns the amount of
	// affected clients
	TerminateExpired(ctx context.Context) (int, error)

	// Close closes the storage driver (i.e. closes a database connection)
	Close()
}
