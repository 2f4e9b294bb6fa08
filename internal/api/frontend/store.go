package frontend

import (
	"context"
	"github.com/kglearn/frontgate/internal/secret"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/kglearn/frontgate/internal/storage/cookie"
	"net/http"
)

const cookieNameClientID = "client_id"

type contextKey int

const contextKeyStore contextKey = 0

// MiddlewareClientStore injects the record store of the requesting client into the request context.
// With a storage driver configured, clients are identified by a random client ID cookie which is issued on first
// contact (or whenever the presented one is invalid).
func (service *Service) MiddlewareClientStore(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		var store storage.Store
		if service.Driver == nil {
			store = cookie.New(writer, request, service.cookieOptions())
		} else {
			store = service.Driver.Client(service.clientHash(writer, request))
		}

		request = request.WithContext(context.WithValue(request.Context(), contextKeyStore, store))
		next(writer, request)
	}
}

func (service *Service) clientHash(writer http.ResponseWriter, request *http.Request) string {
	if clientCookie, err := request.Cookie(cookieNameClientID); err == nil {
		if hash, err := secret.HashClientID(clientCookie.Value); err == nil {
			return hash
		}
	}

	raw, hash := secret.MustNewClientID()
	opts := service.cookieOptions()
	http.SetCookie(writer, &http.Cookie{
		Name:     cookieNameClientID,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		Secure:   opts.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return hash
}

func (service *Service) cookieOptions() cookie.Options {
	return cookie.Options{
		Path:   "/",
		Secure: service.Config.CookieSecure,
		MaxAge: service.Config.CookieMaxAge,
	}
}

func clientStore(request *http.Request) storage.Store {
	return request.Context().Value(contextKeyStore).(storage.Store)
}
