package apps

import (
	"apdudispatch/dispatch"
	"apdudispatch/registry"
	"apdudispatch/transport"
)

// Bulk is a reference applet that answers SELECT and CALL with fixed,
// caller-supplied payloads regardless of input, for exercising ingress/
// egress chaining without depending on any particular business logic.
type Bulk struct {
	aid           dispatch.Matcher
	selectPayload []byte
	callPayload   []byte
}

// NewBulk builds a Bulk applet bound to aid (exact match) that answers
// Select with selectPayload and Call with callPayload.
func NewBulk(aid []byte, selectPayload, callPayload []byte) *Bulk {
	return &Bulk{
		aid:           registry.Exact(aid),
		selectPayload: append([]byte(nil), selectPayload...),
		callPayload:   append([]byte(nil), callPayload...),
	}
}

func (b *Bulk) AID() dispatch.Matcher {
	return b.aid
}

func (b *Bulk) Select(_ transport.Interface, _ dispatch.Command, out *dispatch.ResponseBuffer) error {
	_, err := out.Write(b.selectPayload)
	return err
}

func (b *Bulk) Call(_ transport.Interface, _ dispatch.Command, out *dispatch.ResponseBuffer) error {
	_, err := out.Write(b.callPayload)
	return err
}

func (b *Bulk) Deselect() {}
