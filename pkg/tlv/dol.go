package tlv

import (
	"fmt"
	"strings"
)

// DATA OBJECT LIST (DOL) - EMV Book 3, section 5.4:
// A DOL is a concatenation of tag + length pairs WITHOUT values. The card uses it
// (PDOL '9F38', CDOL1 '8C', Log Format '9F4F', ...) to tell the terminal which
// data it expects and how many bytes each element must occupy.
//
// Tags follow the BER rules:
// - If bits 5-1 of the first byte are all set (xxx1 1111), more tag bytes follow.
// - A subsequent byte with bit 8 set announces yet another tag byte.
//
// Lengths follow the BER rules as well (short form < 0x80, long form 0x81/0x82).

// DOLEntry is a single requested element of a Data Object List.
type DOLEntry struct {
	Tag    string // Uppercase hex, e.g. "9F66"
	Length int
}

// ParseDOL splits a Data Object List into its tag + length entries.
func ParseDOL(data []byte) ([]DOLEntry, error) {
	var entries []DOLEntry

	for i := 0; i < len(data); {
		start := i
		// Tag
		if data[i]&0x1F == 0x1F {
			i++
			for i < len(data) && data[i]&0x80 != 0 {
				i++
			}
		}
		i++
		if i > len(data) {
			return entries, fmt.Errorf("truncated tag at offset %d", start)
		}
		tag := strings.ToUpper(fmt.Sprintf("%X", data[start:i]))

		// Length
		if i >= len(data) {
			return entries, fmt.Errorf("missing length for tag %s", tag)
		}
		length := int(data[i])
		i++
		if length&0x80 != 0 {
			n := length & 0x7F
			if n == 0 || n > 2 || i+n > len(data) {
				return entries, fmt.Errorf("invalid length encoding for tag %s", tag)
			}
			length = 0
			for _, b := range data[i : i+n] {
				length = length<<8 | int(b)
			}
			i += n
		}

		entries = append(entries, DOLEntry{Tag: tag, Length: length})
	}

	return entries, nil
}

// TotalLength returns the number of value bytes a DOL asks for.
func TotalLength(entries []DOLEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Length
	}
	return total
}
