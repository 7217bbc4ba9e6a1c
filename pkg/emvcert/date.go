package emvcert

import (
	"fmt"
	"time"

	"github.com/gregLibert/emv-keys/pkg/bits"
)

// ParseExpiry decodes a 2-byte BCD "MMYY" date and returns the last day of that month.
// Years are taken in the 2000-2099 range.
func ParseExpiry(b []byte) (time.Time, error) {
	if len(b) != 2 {
		return time.Time{}, fmt.Errorf("%w: expiry date must be 2 bytes, got %d", ErrCertificateFormat, len(b))
	}

	month, okM := bits.BCD(b[0])
	year, okY := bits.BCD(b[1])
	if !okM || !okY || month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("%w: unparsable expiry date %02X%02X", ErrCertificateFormat, b[0], b[1])
	}

	// day 0 of the next month is the last day of this one
	return time.Date(2000+year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC), nil
}
