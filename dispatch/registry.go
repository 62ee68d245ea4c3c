package dispatch

import "apdudispatch/transport"

// Matcher tests whether an AID belongs to a given application. AID
// matching belongs to the app, not the dispatcher (spec.md §9): some apps
// accept only an exact AID, others any AID sharing their RID prefix.
type Matcher interface {
	Matches(aid []byte) bool
}

// App is the capability set the dispatcher drives, spec.md §4.6/§6. It is
// defined in this package (rather than in registry, which implements the
// container) so that Dispatcher can depend on it directly without creating
// an import cycle with the registry package that holds a slice of them.
type App interface {
	AID() Matcher
	Select(iface transport.Interface, cmd Command, out *ResponseBuffer) error
	Call(iface transport.Interface, cmd Command, out *ResponseBuffer) error
	Deselect()
}

// PollableApp is the deferred-reply extension spec.md §9 flags as an open
// question. Dispatcher.Poll does not drive it in this release; it exists
// so a future extension has a typed home without a breaking change to App.
type PollableApp interface {
	App
	Poll(out *ResponseBuffer) error
}

// Apps is the minimal lookup surface Dispatcher needs from an app roster,
// satisfied by *registry.Registry. Defined here (not in registry) so that
// dispatch never imports registry: registry imports dispatch for App and
// Command, and Dispatcher.Poll only ever needs this narrow interface.
type Apps interface {
	Lookup(aid AID) (App, bool)
}
