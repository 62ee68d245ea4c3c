// Package dispatch implements the APDU dispatch core of spec.md: a state
// machine that arbitrates a contact and a contactless Transport Endpoint,
// implements ISO 7816-4 command chaining on ingress and GET RESPONSE
// chaining on egress, and guarantees at most one application is bound at a
// time.
package dispatch

import (
	"bytes"
	"fmt"

	"apdudispatch/report"
	"apdudispatch/transport"
)

// Dispatcher is the core state machine, spec.md §3 "Dispatcher State".
// It is created once per card session and is not safe for concurrent
// Poll invocations (spec.md §5: single-threaded, cooperative, externally
// driven).
type Dispatcher struct {
	contactless transport.Endpoint
	contact     transport.Endpoint

	currentAID AID
	iface      *transport.Interface
	buf        buffer

	expectedLen       int
	requestWasChained bool

	log *report.Log
}

// New creates a Dispatcher bound to the two transport endpoints for the
// life of the card session. log may be nil to disable activity recording.
func New(contactless, contact transport.Endpoint, log *report.Log) *Dispatcher {
	return &Dispatcher{
		contactless: contactless,
		contact:     contact,
		expectedLen: -1,
		log:         log,
	}
}

// Poll performs one bounded step of work: at most one ingress take, at
// most one app invocation, at most one chunk emission. It returns the
// Interface that is now in the Responded state, if any, so the outer loop
// knows which transport to flush.
func (d *Dispatcher) Poll(reg Apps) *transport.Interface {
	d.maybeUnpin()

	cls, iface, responded := d.intake()
	if responded {
		return &iface
	}
	if cls == nil {
		return nil
	}

	switch c := cls.(type) {
	case ClassSelect:
		return d.dispatchSelect(c, iface, reg)
	case ClassGetResponse:
		return d.handleReply(iface)
	case ClassNewCommand:
		return d.dispatchCall(iface, reg)
	case ClassBadCommand:
		d.buf.clear()
		d.respondRaw(iface, c.SW.Bytes())
		return &iface
	default:
		// Internal contract violation: classification has no handler.
		panic(fmt.Sprintf("dispatch: unhandled classification %T", cls))
	}
}

// maybeUnpin implements the reimplementer recommendation of spec.md §9:
// clear the interface pin once the buffer is Empty and both endpoints are
// Idle, rather than leaving it set until a power cycle.
func (d *Dispatcher) maybeUnpin() {
	if d.iface == nil {
		return
	}
	if d.buf.state() != bufEmpty {
		return
	}
	if d.contactless.State() == transport.Idle && d.contact.State() == transport.Idle {
		d.iface = nil
	}
}

// intake implements spec.md §4.3 (check_for_request) and §4.4
// (buffer_chained_apdu_if_needed) as a single step. It returns either a
// Classification to dispatch further (responded=false), or reports that
// the step already produced a response on iface (responded=true, cls=nil).
func (d *Dispatcher) intake() (cls Classification, iface transport.Interface, responded bool) {
	if d.busy() {
		return nil, 0, false
	}

	iface, raw, ok := d.pullIngress()
	if !ok {
		return nil, 0, false
	}

	// Interface pinning, spec.md §4.3.
	if d.iface != nil && *d.iface != iface {
		d.respondRaw(iface, SW(SW_CROSS_INTERFACE).Bytes())
		return nil, iface, true
	}
	if d.iface == nil {
		pinned := iface
		d.iface = &pinned
	}

	cmd, sw, ok := ParseCommand(raw)
	if !ok {
		_, cause, _ := parseCommandVerbose(raw)
		d.logf(iface, "parse-error", cause)
		d.respondRaw(iface, sw.Bytes())
		d.buf.clear()
		return nil, iface, true
	}

	d.expectedLen = cmd.Le

	cls, responded = d.bufferChainedAPDU(cmd, iface)
	return cls, iface, responded
}

// bufferChainedAPDU implements spec.md §4.4.
func (d *Dispatcher) bufferChainedAPDU(cmd Command, iface transport.Interface) (Classification, bool) {
	if cmd.Chained() {
		// not_last = true: accumulate and acknowledge (or reject an
		// overflowing chain), no dispatch yet.
		if len(cmd.Data) > 0 {
			if !d.buf.request(cmd, d.onDiscard) {
				d.respondRaw(iface, SW(SW_WRONG_LENGTH).Bytes())
				return nil, true
			}
		}
		d.respondRaw(iface, SW(SW_OK).Bytes())
		return nil, true
	}

	// not_last = false: this is the terminal or sole block.
	if d.buf.state() == bufRequest {
		// Completing an ongoing chain.
		if !d.buf.request(cmd, d.onDiscard) {
			d.respondRaw(iface, SW(SW_WRONG_LENGTH).Bytes())
			return nil, true
		}
		d.requestWasChained = true
		return ClassNewCommand{Iface: iface}, false
	}

	d.requestWasChained = false
	cls := Classify(cmd, iface)
	if _, isGetResponse := cls.(ClassGetResponse); isGetResponse {
		// The pending Response buffer must survive a GET RESPONSE pull.
		return cls, false
	}
	if !d.buf.request(cmd, d.onDiscard) {
		d.respondRaw(iface, SW(SW_WRONG_LENGTH).Bytes())
		return nil, true
	}
	return cls, false
}

// dispatchSelect implements spec.md §4.6's select flow, with the
// deselect-ordering fix mandated by spec.md §9: the old app is resolved
// and deselected BEFORE currentAID is rebound, not after (the source's
// order would look the old app up under the new AID).
func (d *Dispatcher) dispatchSelect(c ClassSelect, iface transport.Interface, reg Apps) *transport.Interface {
	app, ok := reg.Lookup(c.AID)
	if !ok {
		d.buf.clear()
		d.respondRaw(iface, SW(SW_FILE_NOT_FOUND).Bytes())
		return &iface
	}

	cmd, ok := d.buf.takeRequest()
	if !ok {
		panic("dispatch: select dispatched with buffer not in Request state")
	}

	aidChanged := d.currentAID == nil || !bytes.Equal(d.currentAID, c.AID)
	if d.currentAID != nil && aidChanged {
		if oldApp, found := reg.Lookup(d.currentAID); found {
			oldApp.Deselect()
		}
	}

	out := NewResponseBuffer()
	err := app.Select(iface, cmd, out)
	d.currentAID = c.AID

	d.logf(iface, "select", fmt.Sprintf("% X", []byte(c.AID)))
	return d.routeAppResult(iface, err, out)
}

// dispatchCall implements spec.md §4.6's call flow.
func (d *Dispatcher) dispatchCall(iface transport.Interface, reg Apps) *transport.Interface {
	if d.currentAID == nil {
		d.buf.clear()
		d.respondRaw(iface, SW(SW_FILE_NOT_FOUND).Bytes())
		return &iface
	}

	app, ok := reg.Lookup(d.currentAID)
	if !ok {
		d.buf.clear()
		d.respondRaw(iface, SW(SW_FILE_NOT_FOUND).Bytes())
		return &iface
	}

	cmd, ok := d.buf.takeRequest()
	if !ok {
		panic("dispatch: call dispatched with buffer not in Request state")
	}

	out := NewResponseBuffer()
	err := app.Call(iface, cmd, out)
	return d.routeAppResult(iface, err, out)
}

// routeAppResult routes an app's Select/Call outcome through the reply
// handler, spec.md §4.6 step 5.
func (d *Dispatcher) routeAppResult(iface transport.Interface, err error, out *ResponseBuffer) *transport.Interface {
	if err != nil {
		sw, ok := err.(SW)
		if !ok {
			sw = SW(SW_UNSPECIFIED_CHECKING)
		}
		d.buf.clear()
		d.respondRaw(iface, sw.Bytes())
		return &iface
	}
	d.buf.response(out.Bytes())
	return d.handleReply(iface)
}

// handleReply implements spec.md §4.7: egress chaining against a pending
// Response, or a spurious-GET-RESPONSE rejection if there is none.
func (d *Dispatcher) handleReply(iface transport.Interface) *transport.Interface {
	data, ok := d.buf.takeResponse()
	if !ok {
		d.buf.clear()
		d.respondRaw(iface, SW(SW_UNSPECIFIED_CHECKING).Bytes())
		return &iface
	}

	maxChunk := d.expectedLen
	if maxChunk < 0 || maxChunk > MaxInterchangeData {
		maxChunk = MaxInterchangeData
	}

	if d.requestWasChained || len(data) > maxChunk {
		boundary := maxChunk
		if len(data) < boundary {
			boundary = len(data)
		}
		chunk := data[:boundary]
		remaining := len(data) - boundary

		var sw uint16
		if remaining == 0 {
			sw = SW_OK
			d.buf.clear()
		} else {
			sw = moreData(remaining)
			d.buf.response(data[boundary:])
		}

		payload := make([]byte, 0, len(chunk)+2)
		payload = append(payload, chunk...)
		payload = append(payload, SW(sw).Bytes()...)
		d.respondRaw(iface, payload)
		return &iface
	}

	payload := make([]byte, 0, len(data)+2)
	payload = append(payload, data...)
	payload = append(payload, SW(SW_OK).Bytes()...)
	d.buf.clear()
	d.respondRaw(iface, payload)
	return &iface
}

// busy reports whether either endpoint is mid-transaction, per spec.md
// §4.3's "one transaction at a time" precondition.
func (d *Dispatcher) busy() bool {
	return isBusy(d.contactless.State()) || isBusy(d.contact.State())
}

func isBusy(s transport.State) bool {
	return s == transport.Processing || s == transport.Responded
}

// pullIngress tries contactless before contact, per spec.md §4.3's
// "biases toward the faster/less-tolerant wireless channel".
func (d *Dispatcher) pullIngress() (transport.Interface, []byte, bool) {
	if req, ok := d.contactless.TakeRequest(); ok {
		return transport.Contactless, req, true
	}
	if req, ok := d.contact.TakeRequest(); ok {
		return transport.Contact, req, true
	}
	return 0, nil, false
}

func (d *Dispatcher) endpoint(iface transport.Interface) transport.Endpoint {
	if iface == transport.Contactless {
		return d.contactless
	}
	return d.contact
}

// respondRaw delivers a response, logging the outcome. A failure here is
// the transport-layer fault spec.md §7 calls fatal-within-the-step: the
// step aborts its write but the Dispatcher itself remains reusable for the
// next Poll.
func (d *Dispatcher) respondRaw(iface transport.Interface, payload []byte) {
	if err := d.endpoint(iface).Respond(payload); err != nil {
		d.logf(iface, "respond-error", err.Error())
		return
	}
	d.logf(iface, "responded", fmt.Sprintf("% X", payload))
}

func (d *Dispatcher) onDiscard() {
	d.logf(0, "warning", "discarding pending response for new request")
}

func (d *Dispatcher) logf(iface transport.Interface, event, detail string) {
	if d.log == nil {
		return
	}
	label := ""
	if iface == transport.Contact || iface == transport.Contactless {
		label = iface.String()
	}
	d.log.Record(label, event, detail)
}

// CurrentAID returns the AID of the currently bound application, or nil if
// none is bound.
func (d *Dispatcher) CurrentAID() AID {
	return d.currentAID
}
