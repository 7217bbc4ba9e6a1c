package iso7816

import (
	"errors"
	"fmt"
)

// APDU ENCODING (ISO 7816-3 / 7816-4):
// A command is a 4-byte header (CLA INS P1 P2) optionally followed by a body:
//
//	Case 1: header only
//	Case 2: header + Le                 (data expected)
//	Case 3: header + Lc + data          (data sent)
//	Case 4: header + Lc + data + Le     (both)
//
// Lc and Le take one byte in short form. The extended form (Lc on '00 XX XX', Le on
// two bytes) is used as soon as Nc > 255 or Ne > 256. In both forms the all-zero Le
// stands for the maximum (256 short, 65536 extended).
//
// A response is the data field followed by the 2-byte status word SW1 SW2.

// APDU length limits.
const (
	MaxShortLc    = 255
	MaxShortLe    = 256
	MaxExtendedLc = 65535
	MaxExtendedLe = 65536
)

// ErrShortResponse is returned for a response without a complete status word.
var ErrShortResponse = errors.New("response shorter than a status word")

// CommandAPDU is a command sent to the card.
type CommandAPDU struct {
	Class       Class
	Instruction Instruction
	P1, P2      byte
	Data        []byte

	// Ne is the expected response length: 0 means no Le field.
	Ne int
}

// NewCommandAPDU creates a command.
func NewCommandAPDU(cla Class, ins Instruction, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{Class: cla, Instruction: ins, P1: p1, P2: p2, Data: data, Ne: ne}
}

// Bytes encodes the command, choosing the short or extended form.
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc, ne := len(c.Data), c.Ne
	if nc > MaxExtendedLc {
		return nil, fmt.Errorf("command data too long: %d bytes", nc)
	}
	if ne < 0 || ne > MaxExtendedLe {
		return nil, fmt.Errorf("expected length out of range: %d", ne)
	}

	cla, err := c.Class.Encode()
	if err != nil {
		return nil, fmt.Errorf("encoding class: %w", err)
	}

	out := make([]byte, 0, 4+3+nc+3)
	out = append(out, cla, byte(c.Instruction.Raw), c.P1, c.P2)

	extended := nc > MaxShortLc || ne > MaxShortLe

	if nc > 0 {
		if extended {
			out = append(out, 0x00, byte(nc>>8), byte(nc))
		} else {
			out = append(out, byte(nc))
		}
		out = append(out, c.Data...)
	}

	switch {
	case ne == 0:
	case !extended:
		out = append(out, byte(ne)) // 256 wraps to 00
	default:
		if nc == 0 {
			out = append(out, 0x00)
		}
		out = append(out, byte(ne>>8), byte(ne)) // 65536 wraps to 0000
	}

	return out, nil
}

// String returns a one-line summary of the command.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("%s P1=%02X P2=%02X Lc=%d Le=%d", c.Instruction.Raw, c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU is the card reply.
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU splits a raw response into data and status word.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("%w: %d bytes", ErrShortResponse, len(raw))
	}

	n := len(raw) - 2
	return &ResponseAPDU{
		Data:   raw[:n],
		Status: NewStatusWord(raw[n], raw[n+1]),
	}, nil
}

// String returns a one-line summary of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("%d bytes, %s", len(r.Data), r.Status.Verbose())
}
