package secret

import (
	"crypto/rand"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"errors"
)

// ClientIDLength is the amount of random bytes a client ID consists of
const ClientIDLength = 32

// ErrInvalidClientID is returned if a raw client ID could not be decoded or has the wrong length
var ErrInvalidClientID = errors.New("invalid client ID")

// MustNewClientID generates a new cryptographically secure client ID and returns its raw (URL-safe base64)
// representation along with its hash
func MustNewClientID() (string, string) {
	bytes := make([]byte, ClientIDLength)
	if _, err := rand.Read(bytes); err != nil {
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(bytes), hash(bytes)
}

// HashClientID decodes the given raw client ID and returns the hex encoded SHA512 hash storage drivers key records by
func HashClientID(raw string) (string, error) {
	bytes, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil || len(bytes) != ClientIDLength {
		return "", ErrInvalidClientID
	}
	return hash(bytes), nil
}

func hash(bytes []byte) string {
	sum := sha512.Sum512(bytes)
	return hex.EncodeToString(sum[:])
}
