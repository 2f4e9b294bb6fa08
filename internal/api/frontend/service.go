package frontend

import (
	"context"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/kglearn/frontgate/internal/api/schema"
	"github.com/kglearn/frontgate/internal/auth"
	"github.com/kglearn/frontgate/internal/config"
	"github.com/kglearn/frontgate/internal/function"
	"github.com/kglearn/frontgate/internal/router"
	"github.com/kglearn/frontgate/internal/storage"
	"github.com/rs/zerolog/log"
	"net"
	"net/http"
	"strings"
	"time"
)

// Service represents the front server: it serves the page routes behind the navigation guard, the navigation and
// session endpoints and the reverse proxy to the backend API
type Service struct {
	server   *http.Server
	listener net.Listener

	Config *config.Config

	// Driver keeps the client records server-side; records live in cookies if it is nil
	Driver storage.Driver

	Table *router.Table
	Guard *router.Guard

	// Now returns the current time used for token expiry checks; defaults to time.Now
	Now func() time.Time

	writer *schema.Writer
}

// Handler builds the HTTP handler of the front server
func (service *Service) Handler() (http.Handler, error) {
	if service.Table == nil {
		service.Table = router.DefaultTable()
	}
	if service.Guard == nil {
		service.Guard = router.NewGuard()
	}

	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the front server experienced an unexpected error")
		},
	}

	// Create the HTTP router
	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(service.MiddlewareLogRequests)
	mux.Use(service.middlewareRedirectSlashes)
	mux.Use(service.middlewareRoutePaths)
	if len(service.Config.AllowedOrigins) > 0 {
		mux.Use(cors.Handler(cors.Options{
			AllowedOrigins: service.Config.AllowedOrigins,
			AllowedMethods: []string{
				http.MethodHead,
				http.MethodGet,
				http.MethodPost,
				http.MethodPut,
				http.MethodPatch,
				http.MethodDelete,
			},
			AllowedHeaders:   []string{"*"},
			AllowCredentials: true,
		}))
	}
	mux.NotFound(service.EndpointStatic)
	mux.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	// Register the page routes behind the navigation guard
	for _, route := range service.Table.Routes() {
		handler := withMiddlewares(service.EndpointPage(route), service.MiddlewareClientStore, service.MiddlewareGuard)
		mux.Get(route.Path, handler)
		mux.Head(route.Path, handler)
	}

	// Register the navigation & session endpoints
	mux.Get("/_router/resolve", withMiddlewares(service.EndpointResolve, service.MiddlewareClientStore))
	mux.Get("/_session", withMiddlewares(service.EndpointGetSession, service.MiddlewareClientStore))
	mux.Post("/_session/logout", withMiddlewares(service.EndpointLogout, service.MiddlewareClientStore))

	// Register the reverse proxy to the backend API
	proxy, err := service.newAPIProxy()
	if err != nil {
		return nil, err
	}
	proxyHandler := withMiddlewares(proxy.ServeHTTP, service.MiddlewareClientStore)
	prefix := strings.TrimSuffix(service.Config.APIPrefix, "/")
	mux.Handle(prefix, proxyHandler)
	mux.Handle(prefix+"/*", proxyHandler)

	return mux, nil
}

// Listen binds the listen address of the front server
func (service *Service) Listen() error {
	handler, err := service.Handler()
	if err != nil {
		return err
	}
	listener, err := net.Listen("tcp", service.Config.ListenAddress())
	if err != nil {
		return err
	}
	service.listener = listener
	service.server = &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return nil
}

// Serve serves requests on the bound listener until the server is shut down
func (service *Service) Serve() error {
	return service.server.Serve(service.listener)
}

// Shutdown gracefully shuts down the front server
func (service *Service) Shutdown() {
	if service.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := service.server.Shutdown(ctx); err != nil {
			service.server.Close()
		}
		service.server = nil
		service.listener = nil
	}
}

func (service *Service) checker(request *http.Request) *auth.Checker {
	checker := auth.NewChecker(clientStore(request))
	checker.Now = service.Now
	return checker
}

// middlewareRedirectSlashes strips trailing slashes of page requests but leaves proxied API paths untouched
func (service *Service) middlewareRedirectSlashes(next http.Handler) http.Handler {
	redirect := middleware.RedirectSlashes(next)
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if hasPathPrefix(request.URL.Path, service.Config.APIPrefix) {
			next.ServeHTTP(writer, request)
			return
		}
		redirect.ServeHTTP(writer, request)
	})
}

// middlewareRoutePaths lets chi route page requests by the declared path of the matching route so page paths match
// regardless of case; the request URL itself is left untouched
func (service *Service) middlewareRoutePaths(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if !hasPathPrefix(request.URL.Path, service.Config.APIPrefix) {
			if route, ok := service.Table.Match(request.URL.Path); ok {
				if rctx := chi.RouteContext(request.Context()); rctx != nil {
					rctx.RoutePath = route.Path
				}
			}
		}
		next.ServeHTTP(writer, request)
	})
}

func withMiddlewares(end http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	return function.Nest(end, middlewares...)
}

// hasPathPrefix reports whether path equals prefix or lies beneath it
func hasPathPrefix(path, prefix string) bool {
	prefix = strings.TrimSuffix(prefix, "/")
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
