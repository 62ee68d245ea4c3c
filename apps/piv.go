package apps

import (
	"apdudispatch/dispatch"
	"apdudispatch/registry"
	"apdudispatch/transport"
)

// PIV is a reference applet matched by RID prefix, modeled on the
// well-known PIV behavior spec.md §4.6 calls out: re-selecting the
// already-bound AID must not disrupt in-progress state, so PIV refreshes
// its session on every Select call but never resets on a no-op reselect.
type PIV struct {
	rid          []byte
	selectCount  int
	deselectCount int
	sessionReset bool
}

// NewPIV builds a PIV-like applet matched by RID prefix.
func NewPIV(rid []byte) *PIV {
	return &PIV{rid: rid}
}

func (p *PIV) AID() dispatch.Matcher {
	return registry.RIDPrefix(p.rid)
}

func (p *PIV) Select(_ transport.Interface, _ dispatch.Command, out *dispatch.ResponseBuffer) error {
	p.selectCount++
	p.sessionReset = true
	_, err := out.Write([]byte{0x61, 0x11, 0x4F, 0x06, 0xA0, 0x00, 0x00, 0x03, 0x08, 0x00})
	return err
}

func (p *PIV) Call(_ transport.Interface, cmd dispatch.Command, out *dispatch.ResponseBuffer) error {
	if !p.sessionReset {
		return dispatch.SW(dispatch.SW_FILE_NOT_FOUND)
	}
	_, err := out.Write(cmd.Data)
	return err
}

func (p *PIV) Deselect() {
	p.deselectCount++
	p.sessionReset = false
}

// Counters exposes call counts for test assertions.
func (p *PIV) Counters() (selects, deselects int) {
	return p.selectCount, p.deselectCount
}
