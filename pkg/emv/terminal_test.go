package emv

import (
	"bytes"
	"testing"
	"time"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

func TestTerminal_DOLData(t *testing.T) {
	term := DefaultTerminal()
	term.Now = func() time.Time { return time.Date(2025, time.March, 7, 10, 0, 0, 0, time.UTC) }
	term.Rand = bytes.NewReader(tlv.Hex("DEADBEEF"))

	entries, err := tlv.ParseDOL(tlv.Hex("9F66 04", "9F02 06", "9A 03", "9F37 04", "5F2A 02", "9F4E 03", "9F1A 01"))
	if err != nil {
		t.Fatalf("ParseDOL failed: %v", err)
	}

	want := tlv.Hex(
		"B6 20 C0 00",       // TTQ
		"00 00 00 00 00 00", // amount
		"25 03 07",          // date
		"DE AD BE EF",       // unpredictable number
		"09 78",             // currency
		"00 00 00",          // unknown tag, zero-filled
		"50",                // country code truncated to the requested length
	)

	got := term.DOLData(entries)
	if !bytes.Equal(got, want) {
		t.Errorf("DOLData mismatch:\nExpected: %X\nGot:      %X", want, got)
	}
}

func TestTerminal_ValuePadding(t *testing.T) {
	term := Terminal{Values: map[string][]byte{"9F02": tlv.Hex("12 34")}}

	got := term.Value(tlv.DOLEntry{Tag: "9f02", Length: 6})
	if want := tlv.Hex("00 00 00 00 12 34"); !bytes.Equal(got, want) {
		t.Errorf("expected right-aligned %X, got %X", want, got)
	}
}
