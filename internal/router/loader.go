package router

import (
	"fmt"
	"gopkg.in/yaml.v3"
	"os"
)

type tableFile struct {
	Routes []struct {
		Path string `yaml:"path"`
		Name string `yaml:"name"`
		View string `yaml:"view"`
		Meta struct {
			GuestOnly     bool `yaml:"guestOnly"`
			RequiresAuth  bool `yaml:"requiresAuth"`
			RequiresAdmin bool `yaml:"requiresAdmin"`
		} `yaml:"meta"`
	} `yaml:"routes"`
}

// LoadTable reads a route table from a YAML file
func LoadTable(path string) (*Table, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseTable(raw)
}

// ParseTable decodes a YAML route table document
func ParseTable(raw []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("decode route table: %w", err)
	}

	routes := make([]*Route, 0, len(file.Routes))
	for _, entry := range file.Routes {
		meta := NoMeta
		if entry.Meta.GuestOnly {
			meta = meta.With(FlagGuestOnly)
		}
		if entry.Meta.RequiresAuth {
			meta = meta.With(FlagRequiresAuth)
		}
		if entry.Meta.RequiresAdmin {
			meta = meta.With(FlagRequiresAdmin)
		}
		routes = append(routes, &Route{
			Path: entry.Path,
			Name: entry.Name,
			View: entry.View,
			Meta: meta,
		})
	}
	return NewTable(routes)
}
