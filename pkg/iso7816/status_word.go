package iso7816

import (
	"fmt"

	"github.com/gregLibert/emv-keys/pkg/bits"
)

// STATUS WORDS (ISO 7816-4, section 5.6):
// Most status words are fixed values. Three families carry a parameter in SW2:
//
//	'61 XX'  XX more response bytes are available (GET RESPONSE)
//	'6C XX'  wrong Le, XX is the length the card expects
//	'63 CX'  warning with a counter, X is e.g. the remaining PIN tries

// StatusWord is the SW1-SW2 trailer of a response.
type StatusWord uint16

// Status words seen while reading payment cards.
const (
	SW_NO_ERROR StatusWord = 0x9000

	SW_WARN_SELECTED_FILE_DEACTIVATED StatusWord = 0x6283
	SW_WARN_NV_CHANGED                StatusWord = 0x6300
	SW_WARN_COUNTER_0                 StatusWord = 0x63C0

	SW_ERR_WRONG_LENGTH            StatusWord = 0x6700
	SW_ERR_CMD_INCOMPATIBLE_FILE   StatusWord = 0x6981
	SW_ERR_SECURITY_STATUS_NOT_SAT StatusWord = 0x6982
	SW_ERR_AUTH_METHOD_BLOCKED     StatusWord = 0x6983
	SW_ERR_REF_DATA_NOT_USABLE     StatusWord = 0x6984
	SW_ERR_COND_OF_USE_NOT_SAT     StatusWord = 0x6985
	SW_ERR_CMD_NOT_ALLOWED_NO_EF   StatusWord = 0x6986
	SW_ERR_INCORRECT_PARAMS_DATA   StatusWord = 0x6A80
	SW_ERR_FUNC_NOT_SUPPORTED      StatusWord = 0x6A81
	SW_ERR_FILE_NOT_FOUND          StatusWord = 0x6A82
	SW_ERR_RECORD_NOT_FOUND        StatusWord = 0x6A83
	SW_ERR_INCORRECT_PARAMS_P1P2   StatusWord = 0x6A86
	SW_ERR_REF_DATA_NOT_FOUND      StatusWord = 0x6A88
	SW_ERR_WRONG_P1P2              StatusWord = 0x6B00
	SW_ERR_INS_INVALID             StatusWord = 0x6D00
	SW_ERR_CLA_NOT_SUPPORTED       StatusWord = 0x6E00
	SW_ERR_UNKNOWN                 StatusWord = 0x6F00
)

var swNames = map[StatusWord]string{
	SW_NO_ERROR:                       "success",
	SW_WARN_SELECTED_FILE_DEACTIVATED: "selected file deactivated (application blocked)",
	SW_WARN_NV_CHANGED:                "authentication failed",
	SW_ERR_WRONG_LENGTH:               "wrong length",
	SW_ERR_CMD_INCOMPATIBLE_FILE:      "command incompatible with file structure",
	SW_ERR_SECURITY_STATUS_NOT_SAT:    "security status not satisfied",
	SW_ERR_AUTH_METHOD_BLOCKED:        "authentication method blocked",
	SW_ERR_REF_DATA_NOT_USABLE:        "referenced data not usable",
	SW_ERR_COND_OF_USE_NOT_SAT:        "conditions of use not satisfied",
	SW_ERR_CMD_NOT_ALLOWED_NO_EF:      "command not allowed, no current EF",
	SW_ERR_INCORRECT_PARAMS_DATA:      "incorrect data field",
	SW_ERR_FUNC_NOT_SUPPORTED:         "function not supported",
	SW_ERR_FILE_NOT_FOUND:             "file or application not found",
	SW_ERR_RECORD_NOT_FOUND:           "record not found",
	SW_ERR_INCORRECT_PARAMS_P1P2:      "incorrect P1-P2",
	SW_ERR_REF_DATA_NOT_FOUND:         "referenced data not found",
	SW_ERR_WRONG_P1P2:                 "wrong P1-P2",
	SW_ERR_INS_INVALID:                "instruction not supported",
	SW_ERR_CLA_NOT_SUPPORTED:          "class not supported",
	SW_ERR_UNKNOWN:                    "no precise diagnosis",
}

// NewStatusWord joins SW1 and SW2.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

func (sw StatusWord) SW1() byte { return byte(sw >> 8) }
func (sw StatusWord) SW2() byte { return byte(sw) }

// IsSuccess reports '90 00' and '61 XX'.
func (sw StatusWord) IsSuccess() bool {
	return sw == SW_NO_ERROR || sw.SW1() == 0x61
}

// IsCounter reports the '63 CX' family.
func (sw StatusWord) IsCounter() bool {
	return sw.SW1() == 0x63 && bits.GetRange(sw.SW2(), 8, 5) == 0x0C
}

// Counter returns X of '63 CX', or -1 for any other status.
func (sw StatusWord) Counter() int {
	if !sw.IsCounter() {
		return -1
	}
	return int(bits.GetRange(sw.SW2(), 4, 1))
}

// String returns the name of a fixed status word, or its hex value.
func (sw StatusWord) String() string {
	if name, ok := swNames[sw]; ok {
		return name
	}
	return fmt.Sprintf("%04X", uint16(sw))
}

// Verbose returns the hex value followed by its meaning.
func (sw StatusWord) Verbose() string {
	switch {
	case sw.SW1() == 0x61:
		return fmt.Sprintf("[%04X] %d more bytes available", uint16(sw), sw.SW2())
	case sw.SW1() == 0x6C:
		return fmt.Sprintf("[%04X] wrong Le, expected %d", uint16(sw), sw.SW2())
	case sw.IsCounter():
		return fmt.Sprintf("[%04X] counter = %d", uint16(sw), sw.Counter())
	}

	if name, ok := swNames[sw]; ok {
		return fmt.Sprintf("[%04X] %s", uint16(sw), name)
	}

	switch sw.SW1() {
	case 0x62, 0x63:
		return fmt.Sprintf("[%04X] warning", uint16(sw))
	case 0x64, 0x65, 0x66:
		return fmt.Sprintf("[%04X] execution error", uint16(sw))
	case 0x67, 0x68, 0x69, 0x6A, 0x6B, 0x6D, 0x6E, 0x6F:
		return fmt.Sprintf("[%04X] checking error", uint16(sw))
	}
	return fmt.Sprintf("[%04X] unknown status", uint16(sw))
}
