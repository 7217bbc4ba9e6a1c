package emv

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

func TestParseFCI_Application(t *testing.T) {
	data := tlv.Hex(
		"6F 2E",
		"84 07 A0000000041010",
		"A5 23",
		"50 0A 4D617374657243617264", // "MasterCard"
		"87 01 01",
		"9F38 03 9F1A02",
		"BF0C 0B",
		"9F4D 02 0B0A",
		"9F0C 03 112233",
	)

	fci, err := ParseFCI(data)
	if err != nil {
		t.Fatalf("ParseFCI() error = %v", err)
	}

	if diff := cmp.Diff(tlv.Hex("A0000000041010"), fci.DFName); diff != "" {
		t.Errorf("DFName mismatch (-want +got):\n%s", diff)
	}
	if got := fci.Label(); got != "MasterCard" {
		t.Errorf("Label() = %q, want %q", got, "MasterCard")
	}
	if diff := cmp.Diff(tlv.Hex("9F1A02"), fci.Proprietary.PDOL); diff != "" {
		t.Errorf("PDOL mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(tlv.Hex("0B0A"), fci.LogEntry()); diff != "" {
		t.Errorf("LogEntry mismatch (-want +got):\n%s", diff)
	}

	if _, ok := fci.DirectorySFI(); ok {
		t.Error("application FCI must not name a directory SFI")
	}
	if n := len(fci.Entries()); n != 0 {
		t.Errorf("Entries() returned %d entries, want none", n)
	}
}

func TestParseFCI_PPSE(t *testing.T) {
	data := tlv.Hex(
		"6F 3A",
		"84 0E 325041592E5359532E4444463031",
		"A5 28",
		"BF0C 25",
		"61 10 4F 07 A0000000031010 87 01 01 9F2A 01 03",
		"61 11 4F 07 A0000000041010 50 06 4D4344454249",
	)

	fci, err := ParseFCI(data)
	if err != nil {
		t.Fatalf("ParseFCI() error = %v", err)
	}

	want := []ApplicationTemplate{
		{AID: tlv.Hex("A0000000031010"), Priority: []byte{0x01}, KernelID: []byte{0x03}},
		{AID: tlv.Hex("A0000000041010"), Label: []byte("MCDEBI")},
	}
	if diff := cmp.Diff(want, fci.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestParseFCI_PSEAndFallbacks(t *testing.T) {
	// no 6F wrapper, SFI only
	fci, err := ParseFCI(tlv.Hex("84 0E 315041592E5359532E4444463031", "A5 03 88 01 01"))
	if err != nil {
		t.Fatalf("ParseFCI() error = %v", err)
	}

	if sfi, ok := fci.DirectorySFI(); !ok || sfi != 1 {
		t.Errorf("DirectorySFI() = %d, %v; want 1, true", sfi, ok)
	}
	if v := fci.LogEntry(); v != nil {
		t.Errorf("LogEntry() = %X, want nil", v)
	}

	// Visa log entry and preferred name
	fci, err = ParseFCI(tlv.Hex("6F 11", "A5 0F", "9F12 04 56495341", "BF0C 05 DF60 02 0B0A"))
	if err != nil {
		t.Fatalf("ParseFCI() error = %v", err)
	}
	if got := fci.Label(); got != "VISA" {
		t.Errorf("Label() = %q, want %q", got, "VISA")
	}
	if diff := cmp.Diff(tlv.Hex("0B0A"), fci.LogEntry()); diff != "" {
		t.Errorf("LogEntry mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range [][]byte{nil, tlv.Hex("6F 05 84")} {
		if _, err := ParseFCI(bad); err == nil {
			t.Errorf("ParseFCI(%X) expected an error", bad)
		}
	}
}

func TestParseDirectoryRecord(t *testing.T) {
	data := tlv.Hex(
		"70 1E",
		"61 1C",
		"4F 07 A0000000031010",
		"50 0A 56495341204445424954", // "VISA DEBIT"
		"87 01 02",
		"99 02 DEAF",
	)

	entries, err := ParseDirectoryRecord(data)
	if err != nil {
		t.Fatalf("ParseDirectoryRecord() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}

	e := entries[0]
	if diff := cmp.Diff(tlv.Hex("A0000000031010"), e.AID); diff != "" {
		t.Errorf("AID mismatch (-want +got):\n%s", diff)
	}
	if got := string(e.Label); got != "VISA DEBIT" {
		t.Errorf("Label = %q, want %q", got, "VISA DEBIT")
	}
	if len(e.Unknown) != 1 || e.Unknown[0].Tag != "99" {
		t.Errorf("Unknown = %+v, want the single tag 99", e.Unknown)
	}

	_, err = ParseDirectoryRecord(tlv.Hex("61 09 4F 07 A0000000031010"))
	if !errors.Is(err, ErrNotTemplate) {
		t.Errorf("ParseDirectoryRecord() error = %v, want %v", err, ErrNotTemplate)
	}
}

func TestFCI_Describe(t *testing.T) {
	data := tlv.Hex(
		"6F 2D",
		"84 07 A0000000031010",
		"A5 22",
		"50 04 56495341",
		"9F38 03 9F1A02",
		"BF0C 13",
		"9F4D 02 0B0A",
		"61 09 4F 07 A0000000031010",
		"99 01 01",
	)

	fci, err := ParseFCI(data)
	if err != nil {
		t.Fatalf("ParseFCI() error = %v", err)
	}

	want := []string{
		"=== EMV FCI ===",
		"    - DFName (84): A0000000031010",
		`    - Proprietary.Label (50): 56495341 ("VISA")`,
		"    - Proprietary.PDOL (9F38): 9F1A02",
		"    - Discretionary.LogEntry (9F4D): 0B0A",
		"    - Discretionary.Unknown Tag 99: 01",
		"    - Entry[1].AID (4F): A0000000031010",
	}
	if diff := cmp.Diff(want, strings.Split(fci.Describe(), "\n")); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}
}
