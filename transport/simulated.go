package transport

import (
	"errors"
	"sync"
)

// ErrNotProcessing is returned by Simulated.Respond when the endpoint is
// not currently in the Processing state.
var ErrNotProcessing = errors.New("transport: respond called out of state")

// Simulated is a channel-free, mutex-guarded Endpoint used by the scenario
// suite and by the reference CLI for both the contact and the contactless
// interface.
type Simulated struct {
	mu      sync.Mutex
	state   State
	pending []byte
	last    []byte
}

// NewSimulated returns an idle Simulated endpoint.
func NewSimulated() *Simulated {
	return &Simulated{state: Idle}
}

// Push delivers a request from the "host" side, moving Idle -> Requested.
// It is a programming error to push while a transaction is already in
// flight (Requested/Processing/Responded); Push reports that with an error
// rather than silently overwriting, mirroring spec.md's "one transaction
// at a time" invariant.
func (s *Simulated) Push(req []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Idle {
		return errors.New("transport: push while endpoint is not idle")
	}
	s.pending = req
	s.state = Requested
	return nil
}

func (s *Simulated) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Simulated) TakeRequest() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Requested {
		return nil, false
	}
	req := s.pending
	s.pending = nil
	s.state = Processing
	return req, true
}

func (s *Simulated) Respond(msg []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Processing {
		return ErrNotProcessing
	}
	s.last = msg
	s.state = Responded
	return nil
}

// Sent returns the most recent response and clears the Responded state back
// to Idle, the way the outer loop's "flush hardware" step would.
func (s *Simulated) Sent() ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Responded {
		return nil, false
	}
	msg := s.last
	s.last = nil
	s.state = Idle
	return msg, true
}
