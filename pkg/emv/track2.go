package emv

import (
	"encoding/hex"
	"strings"
)

// TRACK 2 EQUIVALENT DATA (Tag '57', or '9F6B' on Mastercard contactless):
// The magnetic stripe track 2 coded as nibbles:
//   PAN | 'D' separator | Expiry YYMM | Service code (3 digits) | Discretionary data | 'F' padding

// Track2 holds the decoded fields of the Track 2 equivalent data.
type Track2 struct {
	PAN         string
	Expiry      string // YYMM
	ServiceCode string
}

// ParseTrack2 decodes Track 2 equivalent data.
// It returns false when the data carries no field separator.
func ParseTrack2(data []byte) (Track2, bool) {
	s := strings.ToUpper(hex.EncodeToString(data))

	sep := strings.IndexByte(s, 'D')
	if sep <= 0 {
		return Track2{}, false
	}

	t := Track2{PAN: s[:sep]}
	rest := s[sep+1:]
	if len(rest) >= 4 {
		t.Expiry = rest[:4]
	}
	if len(rest) >= 7 {
		t.ServiceCode = rest[4:7]
	}
	return t, true
}

// decodePAN renders the BCD application PAN (Tag '5A') without its 'F' padding.
func decodePAN(data []byte) string {
	return strings.TrimRight(strings.ToUpper(hex.EncodeToString(data)), "F")
}
