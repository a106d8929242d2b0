package domain

import (
	"fmt"
	"strings"
)

// Repository identifies a tracked Docker Hub repository
type Repository struct {
	Org  string `json:"org" toml:"org"`
	Name string `json:"name" toml:"name"`
}

// Key returns the identity key used to address samples of this repository
func (r Repository) Key() string {
	return r.Org + "/" + r.Name
}

// String implements fmt.Stringer
func (r Repository) String() string {
	return r.Key()
}

// ParseRepository parses an "org/name" string into a Repository
func ParseRepository(s string) (Repository, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("invalid repository %q: expected org/name", s)
	}
	return Repository{Org: parts[0], Name: parts[1]}, nil
}
