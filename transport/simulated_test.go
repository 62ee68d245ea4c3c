package transport

import "testing"

func TestSimulated_PushTakeRespondSent(t *testing.T) {
	s := NewSimulated()
	if s.State() != Idle {
		t.Fatalf("fresh Simulated state = %v, want Idle", s.State())
	}

	if err := s.Push([]byte{0x00, 0xA4}); err != nil {
		t.Fatalf("Push() = %v", err)
	}
	if s.State() != Requested {
		t.Fatalf("state after Push() = %v, want Requested", s.State())
	}

	req, ok := s.TakeRequest()
	if !ok || len(req) != 2 {
		t.Fatalf("TakeRequest() = % X, %v", req, ok)
	}
	if s.State() != Processing {
		t.Fatalf("state after TakeRequest() = %v, want Processing", s.State())
	}

	if err := s.Respond([]byte{0x90, 0x00}); err != nil {
		t.Fatalf("Respond() = %v", err)
	}
	if s.State() != Responded {
		t.Fatalf("state after Respond() = %v, want Responded", s.State())
	}

	resp, ok := s.Sent()
	if !ok || len(resp) != 2 {
		t.Fatalf("Sent() = % X, %v", resp, ok)
	}
	if s.State() != Idle {
		t.Fatalf("state after Sent() = %v, want Idle", s.State())
	}
}

func TestSimulated_PushWhileNotIdleErrors(t *testing.T) {
	s := NewSimulated()
	if err := s.Push([]byte{0x01}); err != nil {
		t.Fatalf("first Push() = %v", err)
	}
	if err := s.Push([]byte{0x02}); err == nil {
		t.Errorf("second Push() while Requested = nil error, want an error")
	}
}

func TestSimulated_RespondOutOfStateErrors(t *testing.T) {
	s := NewSimulated()
	if err := s.Respond([]byte{0x90, 0x00}); err != ErrNotProcessing {
		t.Errorf("Respond() on Idle endpoint = %v, want ErrNotProcessing", err)
	}
}

func TestSimulated_TakeRequestWhenIdleReturnsFalse(t *testing.T) {
	s := NewSimulated()
	if _, ok := s.TakeRequest(); ok {
		t.Errorf("TakeRequest() on Idle endpoint = true, want false")
	}
}

func TestSimulated_SentWhenNotRespondedReturnsFalse(t *testing.T) {
	s := NewSimulated()
	if _, ok := s.Sent(); ok {
		t.Errorf("Sent() before Respond() = true, want false")
	}
}
