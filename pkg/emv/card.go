package emv

import (
	"fmt"
	"strings"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// Card accumulates everything read from the payment application.
// Fields the card does not provide stay empty (nil slices, nil pointers).
type Card struct {
	AID              tlv.HexBytes `json:"aid,omitempty"`
	ApplicationLabel string       `json:"applicationLabel,omitempty"`
	Scheme           string       `json:"scheme,omitempty"`

	PAN    string `json:"pan,omitempty"`
	Expiry string `json:"expiry,omitempty"` // YYMM

	HolderName      string `json:"holderName,omitempty"`
	HolderFirstname string `json:"holderFirstname,omitempty"`
	HolderLastname  string `json:"holderLastname,omitempty"`

	CAPublicKeyIndex *byte `json:"caPublicKeyIndex,omitempty"`

	IssuerPublicKeyCertificate tlv.HexBytes `json:"issuerPublicKeyCertificate,omitempty"`
	IssuerPublicKeyRemainder   tlv.HexBytes `json:"issuerPublicKeyRemainder,omitempty"`
	IssuerPublicKeyExponent    tlv.HexBytes `json:"issuerPublicKeyExponent,omitempty"`

	ICCPublicKeyCertificate tlv.HexBytes `json:"iccPublicKeyCertificate,omitempty"`
	ICCPublicKeyRemainder   tlv.HexBytes `json:"iccPublicKeyRemainder,omitempty"`
	ICCPublicKeyExponent    tlv.HexBytes `json:"iccPublicKeyExponent,omitempty"`

	PINPublicKeyCertificate tlv.HexBytes `json:"pinPublicKeyCertificate,omitempty"`
	PINPublicKeyRemainder   tlv.HexBytes `json:"pinPublicKeyRemainder,omitempty"`
	PINPublicKeyExponent    tlv.HexBytes `json:"pinPublicKeyExponent,omitempty"`

	PinTryCounter *int                `json:"pinTryCounter,omitempty"`
	Transactions  []TransactionRecord `json:"transactions,omitempty"`

	// Locked is set when no payment application could be read.
	Locked bool `json:"locked"`
}

// RID returns the scheme identifier (first 5 bytes of the AID) as uppercase hex.
func (c *Card) RID() string {
	if len(c.AID) < RIDLength {
		return ""
	}
	return tlv.HexBytes(c.AID[:RIDLength]).String()
}

func (c *Card) setHolderName(raw []byte) {
	name := strings.TrimSpace(string(raw))
	if name == "" {
		return
	}
	c.HolderName = name

	// ISO 7813 layout: SURNAME/FIRST NAME
	parts := strings.Split(name, "/")
	if len(parts) == 2 {
		c.HolderLastname = strings.TrimSpace(parts[0])
		c.HolderFirstname = strings.TrimSpace(parts[1])
	}
}

// Describe generates a readable summary of the card record.
func (c *Card) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV CARD ===")

	tlv.WriteStructFields(&sb, "Card", c)

	if c.CAPublicKeyIndex != nil {
		sb.WriteString(fmt.Sprintf("\n    - Card.CAPublicKeyIndex (8F): %02X", *c.CAPublicKeyIndex))
	}
	if c.PinTryCounter != nil {
		sb.WriteString(fmt.Sprintf("\n    - Card.PinTryCounter (9F17): %d", *c.PinTryCounter))
	}
	for i, t := range c.Transactions {
		tlv.WriteStructFields(&sb, fmt.Sprintf("Log[%d]", i+1), t)
	}

	return sb.String()
}
