package emv

import (
	"bytes"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// Scheme groups the well-known AIDs published by a payment scheme.
// The first 5 bytes of every AID are the scheme RID.
type Scheme struct {
	Name string
	AIDs [][]byte
}

// RID returns the Registered Identifier shared by the scheme AIDs.
func (s Scheme) RID() []byte {
	if len(s.AIDs) == 0 || len(s.AIDs[0]) < RIDLength {
		return nil
	}
	return s.AIDs[0][:RIDLength]
}

// RIDLength is the size of the Registered Identifier prefix of an AID.
const RIDLength = 5

// KnownSchemes is the ordered list of AIDs tried when the card exposes no
// payment system directory.
var KnownSchemes = []Scheme{
	{Name: "VISA", AIDs: [][]byte{
		tlv.Hex("A0000000031010"),
		tlv.Hex("A0000000032010"),
		tlv.Hex("A0000000032020"),
		tlv.Hex("A0000000038010"),
	}},
	{Name: "MASTERCARD", AIDs: [][]byte{
		tlv.Hex("A0000000041010"),
		tlv.Hex("A0000000043060"),
		tlv.Hex("A0000000046000"),
	}},
	{Name: "AMERICAN EXPRESS", AIDs: [][]byte{
		tlv.Hex("A00000002501"),
	}},
	{Name: "CB", AIDs: [][]byte{
		tlv.Hex("A0000000421010"),
		tlv.Hex("A0000000422010"),
	}},
	{Name: "JCB", AIDs: [][]byte{
		tlv.Hex("A0000000651010"),
	}},
	{Name: "DANKORT", AIDs: [][]byte{
		tlv.Hex("A0000001211010"),
	}},
	{Name: "DISCOVER", AIDs: [][]byte{
		tlv.Hex("A0000001523010"),
	}},
	{Name: "INTERAC", AIDs: [][]byte{
		tlv.Hex("A0000002771010"),
	}},
	{Name: "UNIONPAY", AIDs: [][]byte{
		tlv.Hex("A000000333010101"),
		tlv.Hex("A000000333010102"),
		tlv.Hex("A000000333010103"),
	}},
	{Name: "GIROCARD", AIDs: [][]byte{
		tlv.Hex("A0000003591010028001"),
	}},
	{Name: "RUPAY", AIDs: [][]byte{
		tlv.Hex("A0000005241010"),
	}},
	{Name: "BANKAXEPT", AIDs: [][]byte{
		tlv.Hex("D5780000021010"),
	}},
}

// SchemeName resolves the scheme of an AID.
// The longest known AID prefix wins; otherwise the RID alone decides.
// It returns an empty string for unknown schemes.
func SchemeName(aid []byte) string {
	best, bestLen := "", 0
	for _, s := range KnownSchemes {
		for _, known := range s.AIDs {
			if len(known) > bestLen && bytes.HasPrefix(aid, known) {
				best, bestLen = s.Name, len(known)
			}
		}
	}
	if best != "" {
		return best
	}

	if len(aid) < RIDLength {
		return ""
	}
	for _, s := range KnownSchemes {
		if bytes.Equal(s.RID(), aid[:RIDLength]) {
			return s.Name
		}
	}
	return ""
}
