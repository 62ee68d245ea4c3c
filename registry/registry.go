// Package registry implements the App Registry of spec.md §2/§9: a flat,
// caller-owned, ordered collection of applications, resolved by AID on
// every dispatch step rather than cached.
package registry

import (
	"bytes"

	"apdudispatch/dispatch"
)

// Registry is an ordered roster of applications. Lookup always scans the
// slice; spec.md §9 explicitly rejects caching a resolved handle inside
// the dispatcher, since the registry is caller-owned and mutable between
// polls.
type Registry struct {
	apps []dispatch.App
}

// New builds a Registry from the given apps, preserving order (first match
// wins on AID collisions, which callers should avoid).
func New(apps ...dispatch.App) *Registry {
	return &Registry{apps: apps}
}

// Lookup finds the first app whose Matcher accepts aid.
func (r *Registry) Lookup(aid dispatch.AID) (dispatch.App, bool) {
	for _, app := range r.apps {
		if app.AID().Matches(aid) {
			return app, true
		}
	}
	return nil, false
}

// All returns the registered apps in order, for enumeration by callers
// (e.g. a CLI listing what is installed).
func (r *Registry) All() []dispatch.App {
	out := make([]dispatch.App, len(r.apps))
	copy(out, r.apps)
	return out
}

// ridPrefix matches any AID sharing the given RID (registered application
// provider identifier) prefix -- the common case per spec.md §3.
type ridPrefix []byte

func (p ridPrefix) Matches(aid []byte) bool {
	return bytes.HasPrefix(aid, p)
}

// RIDPrefix builds a Matcher accepting any AID beginning with rid.
func RIDPrefix(rid []byte) dispatch.Matcher {
	cp := make(ridPrefix, len(rid))
	copy(cp, rid)
	return cp
}

// exact matches only an identical AID.
type exact []byte

func (e exact) Matches(aid []byte) bool {
	return bytes.Equal(aid, e)
}

// Exact builds a Matcher accepting only the exact AID given.
func Exact(aid []byte) dispatch.Matcher {
	cp := make(exact, len(aid))
	copy(cp, aid)
	return cp
}
