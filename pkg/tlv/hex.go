package tlv

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Hex constructs a byte slice from a series of hex strings.
func Hex(parts ...string) []byte {
	fullHex := strings.Join(parts, "")
	// Clean up spaces to allow format like "00 A4 04 00"
	cleanHex := strings.ReplaceAll(fullHex, " ", "")

	data, err := hex.DecodeString(cleanHex)
	if err != nil {
		panic(fmt.Sprintf("invalid input '%s': %v", cleanHex, err))
	}
	return data
}

// HexBytes is a byte slice that serializes as an uppercase hex string without separators.
// It implements encoding.TextMarshaler so JSON and YAML encoders pick the format up.
type HexBytes []byte

// String returns the uppercase hex form.
func (h HexBytes) String() string {
	return strings.ToUpper(hex.EncodeToString(h))
}

// MarshalText implements encoding.TextMarshaler.
func (h HexBytes) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Spaces are tolerated so catalogs can keep long moduli readable.
func (h *HexBytes) UnmarshalText(text []byte) error {
	clean := strings.Join(strings.Fields(string(text)), "")
	data, err := hex.DecodeString(clean)
	if err != nil {
		return fmt.Errorf("invalid hex value: %w", err)
	}
	*h = data
	return nil
}
