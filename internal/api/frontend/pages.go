package frontend

import (
	"github.com/kglearn/frontgate/internal/api/schema"
	"github.com/kglearn/frontgate/internal/router"
	"github.com/rs/zerolog/log"
	"html/template"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
)

var shellTemplate = template.Must(template.New("shell").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Name}}</title>
</head>
<body>
<div id="app" data-route="{{.Name}}" data-view="{{.View}}" data-path="{{.Path}}"></div>
</body>
</html>
`))

// MiddlewareGuard evaluates the navigation guard for the requested page and redirects the client if a rule applies
func (service *Service) MiddlewareGuard(next http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		to, err := service.Table.Resolve(request.URL.RequestURI())
		if err != nil {
			service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
			return
		}
		from := service.origin(request)

		decision := service.Guard.Evaluate(request.Context(), service.checker(request), to, from)
		if !decision.Proceed() {
			href, err := service.Table.Href(decision.Redirect)
			if err != nil {
				service.writer.WriteInternalError(writer, err)
				return
			}
			log.Debug().Str("to", to.FullPath).Str("rule", decision.Rule).Str("location", href).Msg("redirecting navigation")
			writer.Header().Set("Cache-Control", "no-store")
			http.Redirect(writer, request, href, http.StatusFound)
			return
		}

		next(writer, request)
	}
}

// EndpointPage handles the page endpoint of a single route by serving the application shell
func (service *Service) EndpointPage(route *router.Route) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Cache-Control", "no-store")

		if service.Config.StaticDir != "" {
			http.ServeFile(writer, request, filepath.Join(service.Config.StaticDir, "index.html"))
			return
		}

		writer.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := shellTemplate.Execute(writer, route); err != nil {
			log.Error().Err(err).Str("route", route.Name).Msg("could not render the application shell")
		}
	}
}

// EndpointStatic serves files of the static directory for paths no route serves
func (service *Service) EndpointStatic(writer http.ResponseWriter, request *http.Request) {
	if service.Config.StaticDir != "" && (request.Method == http.MethodGet || request.Method == http.MethodHead) {
		file := filepath.Join(service.Config.StaticDir, filepath.FromSlash(path.Clean("/"+request.URL.Path)))
		if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
			http.ServeFile(writer, request, file)
			return
		}
	}
	service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
}

// origin resolves the page the client navigates from using the Referer header; foreign origins are ignored
func (service *Service) origin(request *http.Request) *router.Location {
	referer := request.Referer()
	if referer == "" {
		return nil
	}
	parsed, err := url.Parse(referer)
	if err != nil || parsed.Host != request.Host {
		return nil
	}
	from, err := service.Table.Resolve(parsed.RequestURI())
	if err != nil {
		return nil
	}
	return from
}
