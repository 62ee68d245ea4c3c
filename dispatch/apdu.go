package dispatch

import (
	"apdudispatch/transport"
)

// Instruction bytes this dispatcher cares about; named after the teacher's
// own INS_* convention in card/apdu.go.
const (
	INS_SELECT       = 0xA4
	INS_GET_RESPONSE = 0xC0
)

// chainNotLast is the CLA command-chaining bit (ISO/IEC 7816-4 §5.1.1.1 for
// the first interindustry class): when set, this is not the last block of
// a chained command.
const chainNotLast = 0x10

// selectByAID is the SELECT P1 bit that requests "select by AID, DF name".
const selectByAID = 0x04

// AID is a 5..16 byte application identifier.
type AID []byte

// ParseAID validates b as an AID per spec.md §3 (5..16 bytes).
func ParseAID(b []byte) (AID, bool) {
	if len(b) < 5 || len(b) > 16 {
		return nil, false
	}
	out := make(AID, len(b))
	copy(out, b)
	return out, true
}

// Command is a parsed ISO 7816-4 APDU.
type Command struct {
	CLA, INS, P1, P2 byte
	Data             []byte
	Le               int
}

// Chained reports whether the command's CLA carries the "not the last
// block" chaining bit.
func (c Command) Chained() bool {
	return c.CLA&chainNotLast != 0
}

// ParseCommand parses raw bytes into a Command, or reports the SW that
// should be returned for a structural parse failure. Sub-causes (too
// short, bad Lc, etc.) are not surfaced distinctly per spec.md §4.1; the
// returned bool is false on any failure, and parseCommandVerbose yields
// the sub-cause for logging.
func ParseCommand(raw []byte) (Command, SW, bool) {
	cmd, _, ok := parseCommandVerbose(raw)
	if !ok {
		return Command{}, SW(SW_UNSPECIFIED_CHECKING), false
	}
	return cmd, 0, true
}

// parseCommandVerbose is the same parse with a human-readable sub-cause,
// which the dispatcher records in its activity log on a parse failure; the
// SW it replies with is always the collapsed ParseCommand result.
func parseCommandVerbose(raw []byte) (Command, string, bool) {
	if len(raw) < 4 {
		return Command{}, "too short", false
	}

	cmd := Command{CLA: raw[0], INS: raw[1], P1: raw[2], P2: raw[3], Le: -1}
	rest := raw[4:]

	switch {
	case len(rest) == 0:
		// Case 1: no data, no Le.
		return cmd, "", true

	case len(rest) == 1:
		// Case 2: Le only.
		cmd.Le = leValue(rest[0])
		return cmd, "", true

	default:
		lc := int(rest[0])
		body := rest[1:]
		if lc == 0 {
			return Command{}, "invalid length", false
		}
		if lc > len(body) {
			return Command{}, "invalid length", false
		}
		cmd.Data = body[:lc]
		tail := body[lc:]
		switch len(tail) {
		case 0:
			// Case 3: Lc + data, no Le.
			return cmd, "", true
		case 1:
			// Case 4: Lc + data + Le.
			cmd.Le = leValue(tail[0])
			return cmd, "", true
		default:
			return Command{}, "invalid extended-length body", false
		}
	}
}

// leValue maps an Le byte to its integer meaning (0x00 means 256).
func leValue(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

// Classification is the result of classifying a parsed command, spec.md
// §4.1. It is a small closed sum implemented with an unexported marker
// method, the idiomatic substitute for a tagged enum.
type Classification interface {
	classification()
}

type ClassSelect struct {
	AID   AID
	Iface transport.Interface
}

type ClassGetResponse struct{}

type ClassNewCommand struct {
	Iface transport.Interface
}

type ClassBadCommand struct {
	SW SW
}

func (ClassSelect) classification()      {}
func (ClassGetResponse) classification() {}
func (ClassNewCommand) classification()  {}
func (ClassBadCommand) classification()  {}

// Classify implements spec.md §4.1's classification rules.
func Classify(cmd Command, iface transport.Interface) Classification {
	if cmd.INS == INS_SELECT && cmd.P1&selectByAID != 0 {
		aid, ok := ParseAID(cmd.Data)
		if !ok {
			return ClassBadCommand{SW: SW(SW_WRONG_DATA)}
		}
		return ClassSelect{AID: aid, Iface: iface}
	}
	if cmd.INS == INS_GET_RESPONSE {
		return ClassGetResponse{}
	}
	return ClassNewCommand{Iface: iface}
}
