package cookie

import (
	"context"
	"encoding/base64"
	"github.com/kglearn/frontgate/internal/storage"
	"net/http"
	"time"
)

// Options defines how record cookies are issued
type Options struct {
	Path   string
	Secure bool
	MaxAge time.Duration
}

func (opts Options) normalize() Options {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return opts
}

// Store implements storage.Store on top of the cookies of a single HTTP exchange.
// Values are read from the request and written as Set-Cookie headers; reads observe earlier writes of the same
// exchange. A Store is bound to one request and must not be shared between goroutines.
type Store struct {
	writer  http.ResponseWriter
	request *http.Request
	opts    Options
	written map[string]*string
}

var _ storage.Store = (*Store)(nil)

// New creates a new cookie store for the given HTTP exchange
func New(writer http.ResponseWriter, request *http.Request, opts Options) *Store {
	return &Store{
		writer:  writer,
		request: request,
		opts:    opts.normalize(),
		written: make(map[string]*string),
	}
}

// Get retrieves the value stored under key.
// Cookie values that are not valid base64 are returned verbatim so callers treat them as malformed records.
func (store *Store) Get(_ context.Context, key string) (string, bool, error) {
	if value, ok := store.written[key]; ok {
		if value == nil {
			return "", false, nil
		}
		return *value, true, nil
	}

	cookie, err := store.request.Cookie(key)
	if err != nil || cookie.Value == "" {
		return "", false, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return cookie.Value, true, nil
	}
	return string(decoded), true, nil
}

// Set stores a value under key by issuing a cookie
func (store *Store) Set(_ context.Context, key, value string) error {
	store.written[key] = &value
	http.SetCookie(store.writer, &http.Cookie{
		Name:     key,
		Value:    base64.RawURLEncoding.EncodeToString([]byte(value)),
		Path:     store.opts.Path,
		MaxAge:   int(store.opts.MaxAge.Seconds()),
		Secure:   store.opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Remove deletes the value stored under key by issuing an expired cookie.
// Nothing is written if the client never held the key.
func (store *Store) Remove(ctx context.Context, key string) error {
	if _, ok, _ := store.Get(ctx, key); !ok {
		return nil
	}
	store.written[key] = nil
	http.SetCookie(store.writer, &http.Cookie{
		Name:     key,
		Value:    "",
		Path:     store.opts.Path,
		MaxAge:   -1,
		Secure:   store.opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
