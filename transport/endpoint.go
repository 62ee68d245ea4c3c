// Package transport defines the Transport Endpoint contract the dispatcher
// consumes, and ships two implementations: a real PC/SC reader adapter and
// an in-memory one for tests and simulated traffic.
package transport

import "fmt"

// State is the lifecycle of a Transport Endpoint.
type State int

const (
	Idle State = iota
	Requested
	Processing
	Responded
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Requested:
		return "Requested"
	case Processing:
		return "Processing"
	case Responded:
		return "Responded"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Interface identifies which physical channel a message arrived on.
type Interface int

const (
	Contact Interface = iota
	Contactless
)

func (i Interface) String() string {
	switch i {
	case Contact:
		return "contact"
	case Contactless:
		return "contactless"
	default:
		return fmt.Sprintf("Interface(%d)", int(i))
	}
}

// Endpoint is the external, per-interface responder the dispatcher pulls
// requests from and pushes responses to. Implementations are owned by the
// outer loop, not by the dispatcher.
type Endpoint interface {
	// State reports the endpoint's current lifecycle state.
	State() State

	// TakeRequest atomically yields the pending inbound buffer and moves
	// the endpoint from Requested to Processing. The second return value
	// is false when no request is pending (state != Requested).
	TakeRequest() ([]byte, bool)

	// Respond delivers a response payload. Valid only in Processing;
	// transitions to Responded. Returns an error if called out of state.
	Respond(msg []byte) error
}
