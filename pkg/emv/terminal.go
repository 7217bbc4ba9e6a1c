package emv

import (
	"crypto/rand"
	"io"
	"strings"
	"time"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// TERMINAL DATA:
// Cards ask for terminal data through Data Object Lists (PDOL, CDOL...).
// Each DOL entry names a tag and the exact number of bytes the card expects.
// The Terminal fills known tags with fixed values of a contactless point of sale
// and zero-fills the others.

// Terminal provides the values used to answer a DOL.
type Terminal struct {
	// Values maps an uppercase tag to its value. Unlisted tags are zero-filled.
	Values map[string][]byte

	// Now provides the transaction date (Tag '9A'). Defaults to time.Now.
	Now func() time.Time

	// Rand provides the unpredictable number (Tag '9F37'). Defaults to crypto/rand.
	Rand io.Reader
}

// DefaultTerminal returns the terminal profile used for GET PROCESSING OPTIONS.
func DefaultTerminal() Terminal {
	return Terminal{
		Values: map[string][]byte{
			"9F66": tlv.Hex("B6 20 C0 00"),       // Terminal Transaction Qualifiers
			"9F02": tlv.Hex("00 00 00 00 00 00"), // Amount, Authorised
			"9F03": tlv.Hex("00 00 00 00 00 00"), // Amount, Other
			"9F1A": tlv.Hex("02 50"),             // Terminal Country Code (France)
			"5F2A": tlv.Hex("09 78"),             // Transaction Currency Code (EUR)
			"95":   tlv.Hex("00 00 00 00 00"),    // Terminal Verification Results
			"9C":   tlv.Hex("00"),                // Transaction Type (purchase)
			"9F35": tlv.Hex("22"),                // Terminal Type
			"9F33": tlv.Hex("E0 A0 00"),          // Terminal Capabilities
			"9F40": tlv.Hex("8E 00 B0 50 05"),    // Additional Terminal Capabilities
			"9F09": tlv.Hex("00 8C"),             // Application Version Number
		},
	}
}

// Value returns the value answering one DOL entry, always exactly entry.Length bytes.
// Shorter values are right-aligned, longer values keep their rightmost bytes.
func (t Terminal) Value(entry tlv.DOLEntry) []byte {
	out := make([]byte, entry.Length)

	var val []byte
	switch tag := strings.ToUpper(entry.Tag); tag {
	case "9A":
		now := time.Now
		if t.Now != nil {
			now = t.Now
		}
		val = bcdDate(now())
	case "9F37":
		r := t.Rand
		if r == nil {
			r = rand.Reader
		}
		val = make([]byte, entry.Length)
		if _, err := io.ReadFull(r, val); err != nil {
			val = nil
		}
	default:
		val = t.Values[tag]
	}

	if len(val) > len(out) {
		val = val[len(val)-len(out):]
	}
	copy(out[len(out)-len(val):], val)
	return out
}

// DOLData concatenates the values answering every entry of a DOL.
func (t Terminal) DOLData(entries []tlv.DOLEntry) []byte {
	out := make([]byte, 0, tlv.TotalLength(entries))
	for _, e := range entries {
		out = append(out, t.Value(e)...)
	}
	return out
}

// bcdDate encodes a date as YYMMDD in BCD.
func bcdDate(d time.Time) []byte {
	bcd := func(v int) byte { return byte((v/10)<<4 | v%10) }
	return []byte{bcd(d.Year() % 100), bcd(int(d.Month())), bcd(d.Day())}
}
