// Package apps provides reference dispatch.App implementations: a
// diagnostic echo applet and a PIV-like applet that demonstrates
// idempotent reselect (spec.md §8 property 5), both registered by the demo
// CLI, and a fixed-payload Bulk applet used by the scenario suite.
package apps

import (
	"apdudispatch/dispatch"
	"apdudispatch/registry"
	"apdudispatch/transport"
)

// Echo is a minimal applet that answers SELECT with a fixed FCI-like blob
// and CALL by echoing the command's data field back, useful for exercising
// the dispatcher's chaining and egress paths without any real card logic.
type Echo struct {
	aid      dispatch.Matcher
	selected int
	called   int
}

// NewEcho builds an Echo applet bound to the given AID (matched exactly).
func NewEcho(aid []byte) *Echo {
	return &Echo{aid: registry.Exact(aid)}
}

func (e *Echo) AID() dispatch.Matcher {
	return e.aid
}

func (e *Echo) Select(_ transport.Interface, _ dispatch.Command, out *dispatch.ResponseBuffer) error {
	e.selected++
	_, err := out.Write([]byte{0x6F, 0x00}) // empty FCI template
	return err
}

func (e *Echo) Call(_ transport.Interface, cmd dispatch.Command, out *dispatch.ResponseBuffer) error {
	e.called++
	if len(cmd.Data) == 0 {
		return dispatch.SW(dispatch.SW_WRONG_DATA)
	}
	_, err := out.Write(cmd.Data)
	return err
}

func (e *Echo) Deselect() {
	e.selected = 0
}

// Stats exposes call counters for test assertions.
func (e *Echo) Stats() (selected, called int) {
	return e.selected, e.called
}
