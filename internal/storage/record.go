package storage

import "github.com/kglearn/frontgate/internal/token"

// Record represents a single key-value pair held by a Driver for one client
type Record struct {
	ClientHash string
	Key        string
	Value      string

	// Expires holds the expiry of a stored token in milliseconds since the epoch (see token.ExpiryMillis).
	// It is always 0 for records other than the token.
	Expires int64
}

// NewRecord creates a new record and derives its expiry
func NewRecord(clientHash, key, value string) *Record {
	record := &Record{
		ClientHash: clientHash,
		Key:        key,
		Value:      value,
	}
	if key == KeyToken {
		record.Expires = token.ExpiryMillis(value)
	}
	return record
}
