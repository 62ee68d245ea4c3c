package scenario

// The six scenarios below are the literal byte sequences from spec.md §8.
// Each is grounded directly in that section; comments here name only
// what each step is, not why the expected bytes are what they are.

func (s *Suite) runS1() {
	req := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62}
	want := []byte{0x01, 0x02, 0x03, 0x04, 0x90, 0x00}
	s.exchange("S1 simple select", s.contact, req, want)
}

func (s *Suite) runS2() {
	req := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xF0, 0x00, 0x00, 0x00, 0x01}
	want := []byte{0x6A, 0x82}
	s.exchange("S2 unknown AID", s.contactless, req, want)
}

// runS3 relies on AIDEcho still being bound from S1/S2 (S2's failed
// SELECT never rebinds currentAID), the same way the spec's own S3
// narrative continues a prior session rather than reselecting.
func (s *Suite) runS3() {
	part1 := []byte{0x10, 0x00, 0x00, 0x00, 0x04, 0xAA, 0xBB, 0xCC, 0xDD}
	s.exchange("S3 chained block 1 ack", s.contact, part1, []byte{0x90, 0x00})

	part2 := []byte{0x00, 0x00, 0x00, 0x00, 0x02, 0xEE, 0xFF}
	want := []byte{0x11, 0x22, 0x90, 0x00}
	s.exchange("S3 chained completion", s.contact, part2, want)
}

func (s *Suite) runS4() {
	selectBulk := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x99}
	s.exchange("S4 select bulk app", s.contactless, selectBulk, []byte{0x6F, 0x00, 0x90, 0x00})

	req1 := []byte{0x00, 0x10, 0x00, 0x00, 0x05}
	want1 := []byte{0xA0, 0xA1, 0xA2, 0xA3, 0xA4, 0x61, 0x07}
	s.exchange("S4 egress chaining part 1", s.contactless, req1, want1)

	req2 := []byte{0x00, 0xC0, 0x00, 0x00, 0x07}
	want2 := []byte{0xA5, 0xA6, 0xA7, 0xA8, 0xA9, 0xAA, 0xAB, 0x90, 0x00}
	s.exchange("S4 get response part 2", s.contactless, req2, want2)
}

// runS5 "establishes" a transaction on contactless with the first block
// of a chained SELECT (pinning the interface without completing it),
// then shows a concurrent request on contact is rejected without
// disturbing the pinned session.
func (s *Suite) runS5() {
	part1 := []byte{0x10, 0xA4, 0x04, 0x00, 0x03, 0xA0, 0x00, 0x00}
	s.exchange("S5 establish on contactless", s.contactless, part1, []byte{0x90, 0x00})

	part2 := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62}
	s.exchange("S5 cross-interface interleave rejected", s.contact, part2, []byte{0x64, 0x00})
}

// runS6 reselects AIDEcho for a clean completed transaction, then sends a
// spurious GET RESPONSE with nothing pending.
func (s *Suite) runS6() {
	sel := []byte{0x00, 0xA4, 0x04, 0x00, 0x05, 0xA0, 0x00, 0x00, 0x00, 0x62}
	s.exchange("S6 setup select", s.contact, sel, []byte{0x01, 0x02, 0x03, 0x04, 0x90, 0x00})

	spurious := []byte{0x00, 0xC0, 0x00, 0x00, 0x00}
	s.exchange("S6 spurious GET RESPONSE", s.contact, spurious, []byte{0x6F, 0x00})
}
