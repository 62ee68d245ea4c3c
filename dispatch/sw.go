package dispatch

import "fmt"

// Status Word constants, named after the teacher's own SW_* convention in
// card/apdu.go, extended with the dispatcher-specific ones spec.md adds.
const (
	SW_OK                    uint16 = 0x9000 // success
	SW_MORE_DATA_BASE        uint16 = 0x6100 // + n remaining, or bare for >255
	SW_WRONG_DATA            uint16 = 0x6A80 // incorrect data parameter (bad AID on SELECT)
	SW_FILE_NOT_FOUND        uint16 = 0x6A82 // file/app not found
	SW_CROSS_INTERFACE       uint16 = 0x6400 // unspecified non-persistent execution error
	SW_UNSPECIFIED_CHECKING  uint16 = 0x6F00 // unspecified checking error
	SW_WRONG_LENGTH          uint16 = 0x6700 // wrong length (chaining buffer overflow policy)
)

// SW is a status word rendered as a Go error, mirroring the teacher's own
// habit (APDUResponse.Error) of folding a two-byte trailer into an error
// value instead of a distinct exception type.
type SW uint16

func (sw SW) Error() string {
	return fmt.Sprintf("SW=%04X", uint16(sw))
}

// Bytes renders the status word as its two big-endian trailer bytes.
func (sw SW) Bytes() []byte {
	return []byte{byte(sw >> 8), byte(sw)}
}

// moreData builds the 0x61xx "more data" status word for a given remaining
// count, per spec.md §4.7: 0x6100+n for 0 < n <= 255, bare 0x6100 otherwise.
func moreData(remaining int) uint16 {
	if remaining > 0 && remaining <= 255 {
		return SW_MORE_DATA_BASE + uint16(remaining)
	}
	return SW_MORE_DATA_BASE
}
