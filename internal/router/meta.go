package router

import "strings"

// Flag represents a single route metadata flag
type Flag uint

const (
	// FlagGuestOnly marks routes intended only for unauthenticated visitors
	FlagGuestOnly Flag = 1 << iota

	// FlagRequiresAuth marks routes that require an authenticated client
	FlagRequiresAuth

	// FlagRequiresAdmin marks routes that require an administrator
	FlagRequiresAdmin
)

var flagNames = []struct {
	flag Flag
	name string
}{
	{FlagGuestOnly, "guestOnly"},
	{FlagRequiresAuth, "requiresAuth"},
	{FlagRequiresAdmin, "requiresAdmin"},
}

// Meta represents the container of metadata flags attached to a route
type Meta uint

// NoMeta is the metadata of unknown destinations
const NoMeta Meta = 0

// Has checks if all the given flags are set
func (meta Meta) Has(flags ...Flag) bool {
	for _, flag := range flags {
		if uint(meta)&uint(flag) == 0 {
			return false
		}
	}
	return true
}

// With returns a new container with the given flags and the current ones set
func (meta Meta) With(flags ...Flag) Meta {
	val := uint(meta)
	for _, flag := range flags {
		val |= uint(flag)
	}
	return Meta(val)
}

// Names returns the names of all set flags in declaration order
func (meta Meta) Names() []string {
	names := []string{}
	for _, entry := range flagNames {
		if meta.Has(entry.flag) {
			names = append(names, entry.name)
		}
	}
	return names
}

func (meta Meta) String() string {
	return strings.Join(meta.Names(), ",")
}

// MarshalText encodes the container as its comma separated flag names
func (meta Meta) MarshalText() ([]byte, error) {
	return []byte(meta.String()), nil
}
