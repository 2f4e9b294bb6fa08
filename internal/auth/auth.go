// Package auth evaluates the authentication state a client keeps in a storage.Store: the session token and the
// cached user record written by the login flow.
//
// Every failure (missing or malformed records, unreachable storage) resolves to the conservative answer: the token
// counts as expired and the user as not being an administrator.
package auth

import (
	"context"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/kglearn/frontgate/internal/token"
	"github.com/kglearn/frontgate/internal/user"
	"github.com/rs/zerolog/log"
	"time"
)

// TokenExpired reports whether a raw token is missing, malformed or past its expiry at the current time
func TokenExpired(raw string) bool {
	return token.Expired(raw, time.Now())
}

// Checker answers authentication questions about the records held by a single store
type Checker struct {
	Store storage.Store

	// Now returns the current time; defaults to time.Now
	Now func() time.Time
}

// NewChecker creates a new checker reading from the given store
func NewChecker(store storage.Store) *Checker {
	return &Checker{
		Store: store,
	}
}

// TokenExpired reports whether a raw token is expired at the checker's current time
func (checker *Checker) TokenExpired(raw string) bool {
	return token.Expired(raw, checker.now())
}

// IsAuthenticated reports whether a non-expired token is stored.
// An expired token causes both the token and the user record to be removed.
func (checker *Checker) IsAuthenticated(ctx context.Context) bool {
	raw, ok := checker.get(ctx, storage.KeyToken)
	if !ok {
		return false
	}
	if checker.TokenExpired(raw) {
		checker.Clear(ctx)
		return false
	}
	return true
}

// IsAdmin reports whether the stored user record carries a truthy administrator flag
func (checker *Checker) IsAdmin(ctx context.Context) bool {
	record, ok := checker.User(ctx)
	return ok && record.IsAdmin()
}

// Token returns the stored token if the client is authenticated
func (checker *Checker) Token(ctx context.Context) (string, bool) {
	if !checker.IsAuthenticated(ctx) {
		return "", false
	}
	return checker.get(ctx, storage.KeyToken)
}

// User returns the parsed stored user record
func (checker *Checker) User(ctx context.Context) (user.Record, bool) {
	raw, ok := checker.get(ctx, storage.KeyUser)
	if !ok {
		return nil, false
	}
	record, err := user.Parse(raw)
	if err != nil {
		return nil, false
	}
	return record, true
}

// ClearIfExpired removes both records if a token is stored and expired.
// It reports whether the records were cleared.
func (checker *Checker) ClearIfExpired(ctx context.Context) bool {
	raw, ok := checker.get(ctx, storage.KeyToken)
	if !ok || !checker.TokenExpired(raw) {
		return false
	}
	checker.Clear(ctx)
	return true
}

// Clear removes both the token and the user record
func (checker *Checker) Clear(ctx context.Context) {
	for _, key := range []string{storage.KeyToken, storage.KeyUser} {
		if err := checker.Store.Remove(ctx, key); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("could not remove a stored authentication record")
		}
	}
}

func (checker *Checker) get(ctx context.Context, key string) (string, bool) {
	value, ok, err := checker.Store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("could not read a stored authentication record")
		return "", false
	}
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

func (checker *Checker) now() time.Time {
	if checker.Now != nil {
		return checker.Now()
	}
	return time.Now()
}
