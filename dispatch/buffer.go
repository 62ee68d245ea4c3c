package dispatch

// bufferKind is the tag of the Chaining Buffer's state, spec.md §3/§9: a
// true tagged union, never a pair of optionals, because Request and
// Response are mutually exclusive and that exclusivity is load-bearing.
type bufferKind int

const (
	bufEmpty bufferKind = iota
	bufRequest
	bufResponse
)

// buffer is the Chaining Buffer, spec.md §4.2.
type buffer struct {
	kind bufferKind
	req  Command
	resp []byte
}

func (b *buffer) state() bufferKind {
	return b.kind
}

// overflowed reports whether a combined request body would exceed the
// capacity this buffer negotiates (RESPONSE_CAP, per spec.md §4.2).
func overflowed(n int) bool {
	return n > RESPONSE_CAP
}

// request implements spec.md §4.2's request(cmd_view) operation. onDiscard
// is invoked (for logging) when a pending Response is discarded in favor
// of a new Request. It returns false if the combined command would
// overflow the buffer's capacity, in which case the buffer is reset to
// Empty and the caller must reply SW_WRONG_LENGTH (spec.md §9's
// reset-on-overflow policy, chosen over the source's silent truncation).
func (b *buffer) request(cmd Command, onDiscard func()) bool {
	switch b.kind {
	case bufRequest:
		combined := len(b.req.Data) + len(cmd.Data)
		if overflowed(combined) {
			*b = buffer{}
			return false
		}
		merged := make([]byte, 0, combined)
		merged = append(merged, b.req.Data...)
		merged = append(merged, cmd.Data...)
		b.req.Data = merged
		// The header (CLA/INS/P1/P2/Le) of the first block in the chain is
		// retained; only the data field accumulates.
	case bufResponse:
		if onDiscard != nil {
			onDiscard()
		}
		if overflowed(len(cmd.Data)) {
			*b = buffer{}
			return false
		}
		b.req = cmd
		b.kind = bufRequest
	case bufEmpty:
		if overflowed(len(cmd.Data)) {
			*b = buffer{}
			return false
		}
		b.req = cmd
		b.kind = bufRequest
	}
	return true
}

// response implements spec.md §4.2's response(bytes) operation: an
// unconditional overwrite.
func (b *buffer) response(data []byte) {
	b.resp = data
	b.kind = bufResponse
}

// clear resets the buffer to Empty.
func (b *buffer) clear() {
	*b = buffer{}
}

// takeRequest returns the buffered Request command, if any.
func (b *buffer) takeRequest() (Command, bool) {
	if b.kind != bufRequest {
		return Command{}, false
	}
	return b.req, true
}

// takeResponse returns the buffered Response payload, if any.
func (b *buffer) takeResponse() ([]byte, bool) {
	if b.kind != bufResponse {
		return nil, false
	}
	return b.resp, true
}
