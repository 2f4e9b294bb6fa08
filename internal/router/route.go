package router

import (
	"errors"
	"fmt"
	"strings"
)

// Names of the built-in routes; the guard redirects to Home, Dashboard and AdminHome
const (
	NameHome         = "Home"
	NameDashboard    = "Dashboard"
	NameProfile      = "Profile"
	NameAdminHome    = "AdminHome"
	NameAdminProfile = "AdminProfile"
)

var (
	ErrInvalidPath     = errors.New("route paths must start with '/'")
	ErrDuplicateRoute  = errors.New("duplicate route")
	ErrMissingRoute    = errors.New("required route is missing")
	ErrMissingRouteKey = errors.New("routes need a path and a name")
)

// requiredNames are the redirect targets of the guard rules
var requiredNames = []string{NameHome, NameDashboard, NameAdminHome}

// Route represents a single page route of the application
type Route struct {
	Path string `json:"path"`
	Name string `json:"name"`
	View string `json:"view"`
	Meta Meta   `json:"meta"`
}

// Table represents an immutable set of routes addressable by path and name
type Table struct {
	routes []*Route
	byPath map[string]*Route
	byName map[string]*Route
}

// NewTable validates the given routes and builds a table out of them
func NewTable(routes []*Route) (*Table, error) {
	table := &Table{
		byPath: make(map[string]*Route, len(routes)),
		byName: make(map[string]*Route, len(routes)),
	}
	for _, route := range routes {
		if route.Path == "" || route.Name == "" {
			return nil, ErrMissingRouteKey
		}
		if !strings.HasPrefix(route.Path, "/") {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPath, route.Path)
		}
		path := normalizePath(route.Path)
		if _, ok := table.byPath[pathKey(path)]; ok {
			return nil, fmt.Errorf("%w: path %q", ErrDuplicateRoute, route.Path)
		}
		if _, ok := table.byName[route.Name]; ok {
			return nil, fmt.Errorf("%w: name %q", ErrDuplicateRoute, route.Name)
		}
		cpy := *route
		cpy.Path = path
		table.routes = append(table.routes, &cpy)
		table.byPath[pathKey(path)] = &cpy
		table.byName[route.Name] = &cpy
	}
	for _, name := range requiredNames {
		if _, ok := table.byName[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingRoute, name)
		}
	}
	return table, nil
}

// DefaultTable returns the built-in route table of the portal
func DefaultTable() *Table {
	table, err := NewTable([]*Route{
		{Path: "/", Name: NameHome, View: "HomeView", Meta: NoMeta.With(FlagGuestOnly)},
		{Path: "/dashboard", Name: NameDashboard, View: "DashboardView", Meta: NoMeta.With(FlagRequiresAuth)},
		{Path: "/profile", Name: NameProfile, View: "ProfileView", Meta: NoMeta.With(FlagRequiresAuth)},
		{Path: "/admin", Name: NameAdminHome, View: "AdminHomeView", Meta: NoMeta.With(FlagRequiresAuth, FlagRequiresAdmin)},
		{Path: "/admin/profile", Name: NameAdminProfile, View: "AdminProfileView", Meta: NoMeta.With(FlagRequiresAuth, FlagRequiresAdmin)},
	})
	if err != nil {
		panic(err)
	}
	return table
}

// Routes returns all routes in declaration order
func (table *Table) Routes() []*Route {
	return table.routes
}

// ByName looks up a route by its name
func (table *Table) ByName(name string) (*Route, bool) {
	route, ok := table.byName[name]
	return route, ok
}

// Match looks up the route serving the given path; matching ignores case and a single trailing slash
func (table *Table) Match(path string) (*Route, bool) {
	route, ok := table.byPath[pathKey(path)]
	return route, ok
}

func normalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if len(path) > 1 && strings.HasSuffix(path, "/") {
		return strings.TrimSuffix(path, "/")
	}
	return path
}

func pathKey(path string) string {
	return strings.ToLower(normalizePath(path))
}
