package pack

import (
	"strings"

	"github.com/modmill/modmill/pkg/errors"
)

// Loader identifies the mod-loading runtime a build targets.
// The set of loaders is closed; use ParseLoader to turn user input into
// a Loader so invalid values are rejected at the edge.
type Loader string

const (
	LoaderFabric   Loader = "fabric"
	LoaderForge    Loader = "forge"
	LoaderQuilt    Loader = "quilt"
	LoaderNeoForge Loader = "neoforge"
)

// Loaders lists every supported loader in display order.
var Loaders = []Loader{LoaderFabric, LoaderForge, LoaderQuilt, LoaderNeoForge}

// ParseLoader validates a loader name, case-insensitively.
func ParseLoader(s string) (Loader, error) {
	l := Loader(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Loaders {
		if l == known {
			return l, nil
		}
	}
	return "", errors.New(errors.ErrCodeInvalidLoader, "unknown loader %q (supported: fabric, forge, quilt, neoforge)", s)
}

// String returns the loader name.
func (l Loader) String() string { return string(l) }

// Valid reports whether l is one of the supported loaders.
func (l Loader) Valid() bool {
	_, err := ParseLoader(string(l))
	return err == nil
}
