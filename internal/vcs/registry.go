package vcs

import (
	"fmt"
	"slices"
	"sync"
)

// Opener opens the backend for a repository whose working tree root is
// root. Backends register one from their init function:
//
//	func init() {
//	    vcs.Register(vcs.TypeGit, func(root string) (vcs.VCS, error) { return New(root) })
//	}
type Opener func(root string) (VCS, error)

var (
	openersMu sync.RWMutex
	openers   = map[Type]Opener{}
)

// Register makes a backend available to Open. It panics on a nil opener
// or a second registration for the same type.
func Register(t Type, open Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()

	if open == nil {
		panic(fmt.Sprintf("vcs: nil opener for %s", t))
	}
	if _, dup := openers[t]; dup {
		panic(fmt.Sprintf("vcs: %s registered twice", t))
	}
	openers[t] = open
}

func opener(t Type) Opener {
	openersMu.RLock()
	defer openersMu.RUnlock()
	return openers[t]
}

// Backends returns the registered backend types, sorted.
func Backends() []Type {
	openersMu.RLock()
	defer openersMu.RUnlock()

	types := make([]Type, 0, len(openers))
	for t := range openers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// Open detects the repository containing path and opens it with the
// registered backend. The backend binary must be on PATH.
func Open(path string) (VCS, error) {
	loc, err := Detect(path)
	if err != nil {
		return nil, err
	}
	return open(loc)
}

func open(loc *Location) (VCS, error) {
	fn := opener(loc.Type)
	if fn == nil {
		return nil, fmt.Errorf("no %s backend registered (have %v)", loc.Type, Backends())
	}
	if !binaryAvailable(loc.Type) {
		return nil, fmt.Errorf("%w: %s", ErrVCSNotAvailable, loc.Type)
	}

	v, err := fn(loc.Root)
	if err != nil {
		return nil, fmt.Errorf("opening %s repository at %s: %w", loc.Type, loc.Root, err)
	}
	return v, nil
}
