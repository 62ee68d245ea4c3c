package registry

import (
	"testing"

	"apdudispatch/dispatch"
	"apdudispatch/transport"
)

type stubApp struct {
	matcher dispatch.Matcher
}

func (s *stubApp) AID() dispatch.Matcher { return s.matcher }
func (s *stubApp) Select(transport.Interface, dispatch.Command, *dispatch.ResponseBuffer) error {
	return nil
}
func (s *stubApp) Call(transport.Interface, dispatch.Command, *dispatch.ResponseBuffer) error {
	return nil
}
func (s *stubApp) Deselect() {}

func TestRegistry_Lookup_FirstMatchWins(t *testing.T) {
	exactAID := []byte{0xA0, 0x00, 0x00, 0x00, 0x62}
	a := &stubApp{matcher: Exact(exactAID)}
	b := &stubApp{matcher: RIDPrefix([]byte{0xA0, 0x00, 0x00, 0x00})}

	reg := New(a, b)

	got, ok := reg.Lookup(exactAID)
	if !ok {
		t.Fatalf("Lookup() ok = false, want true")
	}
	if got != dispatch.App(a) {
		t.Errorf("Lookup() returned %v, want the first matching app", got)
	}
}

func TestRegistry_Lookup_NotFound(t *testing.T) {
	reg := New(&stubApp{matcher: Exact([]byte{0xA0, 0x00, 0x00, 0x00, 0x62})})
	_, ok := reg.Lookup([]byte{0xF0, 0x00, 0x00, 0x00, 0x01})
	if ok {
		t.Errorf("Lookup() ok = true for an unregistered AID")
	}
}

func TestRegistry_All_PreservesOrder(t *testing.T) {
	a := &stubApp{matcher: Exact([]byte{0x01, 0x02, 0x03, 0x04, 0x05})}
	b := &stubApp{matcher: Exact([]byte{0x06, 0x07, 0x08, 0x09, 0x0A})}
	reg := New(a, b)

	all := reg.All()
	if len(all) != 2 || all[0] != dispatch.App(a) || all[1] != dispatch.App(b) {
		t.Errorf("All() = %v, want [a, b] in order", all)
	}
}

func TestRIDPrefix_Matches(t *testing.T) {
	m := RIDPrefix([]byte{0xA0, 0x00, 0x00, 0x03, 0x08})
	tests := []struct {
		name string
		aid  []byte
		want bool
	}{
		{"exact RID, no extension", []byte{0xA0, 0x00, 0x00, 0x03, 0x08}, true},
		{"RID plus extension", []byte{0xA0, 0x00, 0x00, 0x03, 0x08, 0x00, 0x00, 0x10, 0x00}, true},
		{"different RID", []byte{0xA0, 0x00, 0x00, 0x00, 0x62}, false},
		{"shorter than RID", []byte{0xA0, 0x00}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := m.Matches(tc.aid); got != tc.want {
				t.Errorf("Matches(% X) = %v, want %v", tc.aid, got, tc.want)
			}
		})
	}
}

func TestExact_Matches(t *testing.T) {
	m := Exact([]byte{0xA0, 0x00, 0x00, 0x00, 0x62})
	if !m.Matches([]byte{0xA0, 0x00, 0x00, 0x00, 0x62}) {
		t.Errorf("Matches() = false for the identical AID")
	}
	if m.Matches([]byte{0xA0, 0x00, 0x00, 0x00, 0x62, 0x01}) {
		t.Errorf("Matches() = true for an AID with a trailing extension")
	}
}
