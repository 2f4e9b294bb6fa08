package router

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidLocation is returned for locations that are not absolute paths within the application
var ErrInvalidLocation = errors.New("locations must be absolute paths")

// Location represents a resolved navigation destination or origin
type Location struct {
	Path     string     `json:"path"`
	FullPath string     `json:"full_path"`
	Query    url.Values `json:"query"`

	// Name and Meta are empty for paths no route serves
	Name string `json:"name,omitempty"`
	Meta Meta   `json:"meta"`
}

// Resolve resolves a path (optionally carrying a query and fragment) against the table
func (table *Table) Resolve(raw string) (*Location, error) {
	if !strings.HasPrefix(raw, "/") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, raw)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	if parsed.Host != "" || parsed.Scheme != "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLocation, raw)
	}

	location := &Location{
		Path:     parsed.Path,
		FullPath: fullPath(parsed),
		Query:    parsed.Query(),
	}
	if route, ok := table.Match(parsed.Path); ok {
		location.Name = route.Name
		location.Meta = route.Meta
	}
	return location, nil
}

// Target represents the destination of a redirect: a named route plus an optional query
type Target struct {
	Name  string     `json:"name"`
	Query url.Values `json:"query,omitempty"`
}

// Href builds the URL a redirect to the given target points at
func (table *Table) Href(target *Target) (string, error) {
	route, ok := table.ByName(target.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingRoute, target.Name)
	}
	if len(target.Query) == 0 {
		return route.Path, nil
	}
	return route.Path + "?" + target.Query.Encode(), nil
}

func fullPath(parsed *url.URL) string {
	full := parsed.EscapedPath()
	if parsed.RawQuery != "" {
		full += "?" + parsed.RawQuery
	}
	if parsed.Fragment != "" {
		full += "#" + parsed.EscapedFragment()
	}
	return full
}
