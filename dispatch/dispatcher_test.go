package dispatch

import (
	"bytes"
	"testing"

	"apdudispatch/report"
	"apdudispatch/transport"
)

// fakeApp is a minimal App used only by this package's own tests, so
// these tests never depend on the apps/registry packages (which import
// dispatch) and stay cycle-free.
type fakeApp struct {
	aid           []byte
	selectPayload []byte
	callPayload   []byte
	deselects     int
}

func (f *fakeApp) AID() Matcher { return matchExact(f.aid) }
func (f *fakeApp) Select(_ transport.Interface, _ Command, out *ResponseBuffer) error {
	_, err := out.Write(f.selectPayload)
	return err
}
func (f *fakeApp) Call(_ transport.Interface, _ Command, out *ResponseBuffer) error {
	_, err := out.Write(f.callPayload)
	return err
}
func (f *fakeApp) Deselect() { f.deselects++ }

type matchExact []byte

func (m matchExact) Matches(aid []byte) bool { return bytes.Equal(aid, m) }

// fakeApps is a tiny in-package Apps implementation (first match wins).
type fakeApps []App

func (fs fakeApps) Lookup(aid AID) (App, bool) {
	for _, a := range fs {
		if a.AID().Matches(aid) {
			return a, true
		}
	}
	return nil, false
}

func newTestDispatcher() (*Dispatcher, *transport.Simulated, *transport.Simulated, fakeApps) {
	contactless := transport.NewSimulated()
	contact := transport.NewSimulated()
	d := New(contactless, contact, report.NewLog(64))

	apps := fakeApps{
		&fakeApp{aid: []byte{0xA0, 0x00, 0x00, 0x00, 0x62}, selectPayload: []byte{0x01, 0x02, 0x03, 0x04}, callPayload: []byte{0x11, 0x22}},
		&fakeApp{aid: []byte{0xA0, 0x00, 0x00, 0x00, 0x99}, selectPayload: []byte{0x6F, 0x00},
			callPayload: []byte{0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0xA5, 0xA6, 0xA7, 0xA8, 0xA9, 0xAA, 0xAB}},
	}
	return d, contactless, contact, apps
}

// exchange pushes req onto ep, polls until a response lands there, and
// returns it.
func exchange(t *testing.T, d *Dispatcher, apps fakeApps, ep *transport.Simulated, req []byte) []byte {
	t.Helper()
	if err := ep.Push(req); err != nil {
		t.Fatalf("Push(% X) = %v", req, err)
	}
	for i := 0; i < 8; i++ {
		d.Poll(apps)
		if resp, ok := ep.Sent(); ok {
			return resp
		}
	}
	t.Fatalf("no response for % X within poll budget", req)
	return nil
}

func assertResponse(t *testing.T, name string, got, want []byte) {
	t.Helper()
	if !bytes.Equal(got, want) {
		t.Errorf("%s: got % X, want % X", name, got, want)
	}
}

func TestDispatcher_S1_SimpleSelect(t *testing.T) {
	d, _, contact, apps := newTestDispatcher()
	req := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62}
	got := exchange(t, d, apps, contact, req)
	assertResponse(t, "S1", got, []byte{0x01, 0x02, 0x03, 0x04, 0x90, 0x00})
}

func TestDispatcher_S2_UnknownAID(t *testing.T) {
	d, contactless, _, apps := newTestDispatcher()
	req := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xF0, 0x00, 0x00, 0x00, 0x01}
	got := exchange(t, d, apps, contactless, req)
	assertResponse(t, "S2", got, []byte{0x6A, 0x82})
}

func TestDispatcher_S3_IngressChaining(t *testing.T) {
	d, _, contact, apps := newTestDispatcher()
	exchange(t, d, apps, contact, []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62})

	ack := exchange(t, d, apps, contact, []byte{0x10, 0x00, 0x00, 0x00, 0x04, 0xAA, 0xBB, 0xCC, 0xDD})
	assertResponse(t, "S3 ack", ack, []byte{0x90, 0x00})

	got := exchange(t, d, apps, contact, []byte{0x00, 0x00, 0x00, 0x00, 0x02, 0xEE, 0xFF})
	assertResponse(t, "S3 completion", got, []byte{0x11, 0x22, 0x90, 0x00})
}

func TestDispatcher_S4_EgressChaining(t *testing.T) {
	d, contactless, _, apps := newTestDispatcher()
	exchange(t, d, apps, contactless, []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x99})

	got1 := exchange(t, d, apps, contactless, []byte{0x00, 0x10, 0x00, 0x00, 0x05})
	assertResponse(t, "S4 part1", got1, []byte{0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0x61, 0x07})

	got2 := exchange(t, d, apps, contactless, []byte{0x00, 0xC0, 0x00, 0x00, 0x07})
	assertResponse(t, "S4 part2", got2, []byte{0xA5, 0xA6, 0xA7, 0xA8, 0xA9, 0xAA, 0xAB, 0x90, 0x00})
}

func TestDispatcher_S5_CrossInterfaceRejection(t *testing.T) {
	d, contactless, contact, apps := newTestDispatcher()

	ack := exchange(t, d, apps, contactless, []byte{0x10, 0xA4, 0x04, 0x00, 0x03, 0xA0, 0x00, 0x00})
	assertResponse(t, "S5 establish", ack, []byte{0x90, 0x00})

	got := exchange(t, d, apps, contact, []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62})
	assertResponse(t, "S5 rejection", got, []byte{0x64, 0x00})

	if contactless.State() != transport.Idle {
		t.Errorf("contactless transaction disturbed: state = %v, want Idle (endpoint drained, buffer still pinned)", contactless.State())
	}
}

func TestDispatcher_S6_SpuriousGetResponse(t *testing.T) {
	d, _, contact, apps := newTestDispatcher()
	exchange(t, d, apps, contact, []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62})

	got := exchange(t, d, apps, contact, []byte{0x00, 0xC0, 0x00, 0x00, 0x00})
	assertResponse(t, "S6", got, []byte{0x6F, 0x00})
}

func TestDispatcher_DeselectOrderingOnAIDSwitch(t *testing.T) {
	d, contactless, _, apps := newTestDispatcher()
	exchange(t, d, apps, contactless, []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62})
	exchange(t, d, apps, contactless, []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x99})

	first := apps[0].(*fakeApp)
	if first.deselects != 1 {
		t.Errorf("Deselect called %d times on AID switch, want 1", first.deselects)
	}
}

func TestDispatcher_ReselectSameAIDDoesNotDeselect(t *testing.T) {
	d, contactless, _, apps := newTestDispatcher()
	sel := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62}
	exchange(t, d, apps, contactless, sel)
	exchange(t, d, apps, contactless, sel)

	first := apps[0].(*fakeApp)
	if first.deselects != 0 {
		t.Errorf("Deselect called on idempotent reselect, want 0 calls")
	}
}
