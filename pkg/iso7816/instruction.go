package iso7816

import (
	"fmt"
)

// INSTRUCTION BYTE (ISO 7816-4, section 5.4.2):
// Odd INS values of the interindustry class carry BER-TLV data.
// '6X' and '9X' are reserved by the transport layer (they look like SW1).

// InsCode is a raw instruction byte.
type InsCode byte

// Instructions used when reading a payment card.
const (
	INS_VERIFY                InsCode = 0x20
	INS_EXTERNAL_AUTHENTICATE InsCode = 0x82
	INS_GET_CHALLENGE         InsCode = 0x84
	INS_INTERNAL_AUTHENTICATE InsCode = 0x88
	INS_SELECT                InsCode = 0xA4
	INS_READ_BINARY           InsCode = 0xB0
	INS_READ_RECORD           InsCode = 0xB2
	INS_GET_RESPONSE          InsCode = 0xC0
	INS_GET_DATA              InsCode = 0xCA
)

var insNames = map[InsCode]string{
	INS_VERIFY:                "VERIFY",
	INS_EXTERNAL_AUTHENTICATE: "EXTERNAL AUTHENTICATE",
	INS_GET_CHALLENGE:         "GET CHALLENGE",
	INS_INTERNAL_AUTHENTICATE: "INTERNAL AUTHENTICATE",
	INS_SELECT:                "SELECT",
	INS_READ_BINARY:           "READ BINARY",
	INS_READ_RECORD:           "READ RECORD",
	INS_GET_RESPONSE:          "GET RESPONSE",
	INS_GET_DATA:              "GET DATA",
}

// RegisterInstruction names an instruction outside the interindustry set,
// e.g. a scheme-proprietary command. It is meant for package initialization.
func RegisterInstruction(ins InsCode, name string) {
	insNames[ins] = name
}

// String returns the command name, or "INS XX" when unknown.
func (i InsCode) String() string {
	if name, ok := insNames[i]; ok {
		return name
	}
	return fmt.Sprintf("INS %02X", byte(i))
}

// Instruction is a validated INS byte.
type Instruction struct {
	Raw      InsCode
	IsBERTLV bool
}

// NewInstruction validates an instruction byte.
func NewInstruction(ins InsCode) (Instruction, error) {
	switch byte(ins) & 0xF0 {
	case 0x60, 0x90:
		return Instruction{}, fmt.Errorf("invalid INS 0x%02X: 6X and 9X are reserved", byte(ins))
	}

	return Instruction{Raw: ins, IsBERTLV: byte(ins)&0x01 == 1}, nil
}

func mustInstruction(ins InsCode) Instruction {
	i, err := NewInstruction(ins)
	if err != nil {
		panic(err)
	}
	return i
}
