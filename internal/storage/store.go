package storage

import "context"

const (
	// KeyToken is the key the session token is stored under
	KeyToken = "token"

	// KeyUser is the key the JSON-serialized user record is stored under
	KeyUser = "user"
)

// Store defines the key-value API the authentication state of a single client is kept in
type Store interface {
	// Get retrieves the value stored under key and a boolean indicating whether it is present
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores a value under key, replacing any existing one
	Set(ctx context.Context, key, value string) error

	// Remove deletes the value stored under key; removing an absent key is not an error
	Remove(ctx context.Context, key string) error
}
