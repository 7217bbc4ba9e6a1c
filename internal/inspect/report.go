package inspect

import (
	"fmt"
	"strings"
	"time"

	"github.com/gregLibert/emv-keys/pkg/emv"
	"github.com/gregLibert/emv-keys/pkg/emvcert"
)

// Report is the outcome of one inspection. It marshals to JSON with key
// material as uppercase hex.
type Report struct {
	Session   string    `json:"session"`
	CheckedAt time.Time `json:"checkedAt"`

	Scheme string `json:"scheme"`
	RID    string `json:"rid"`
	Index  int    `json:"caIndex"`

	Card *emv.Card `json:"card"`

	CA     *KeyReport `json:"ca"`
	Issuer *KeyReport `json:"issuer,omitempty"`
	ICC    *KeyReport `json:"icc,omitempty"`
	PIN    *KeyReport `json:"pin,omitempty"`
}

// KeyReport describes one level of the chain.
// Key is nil when recovery failed; Error then says why.
type KeyReport struct {
	Kind emvcert.Kind       `json:"kind"`
	Key  *emvcert.PublicKey `json:"key,omitempty"`
	Bits int                `json:"bits,omitempty"`

	// Valid is the hash check result. CA keys are trusted and carry none.
	Valid   *bool `json:"valid,omitempty"`
	Expired bool  `json:"expired"`
	ROCA    bool  `json:"roca"`

	Error string `json:"error,omitempty"`
	Err   error  `json:"-"`
}

// Keys returns the key levels present, from CA down.
func (r *Report) Keys() []*KeyReport {
	var out []*KeyReport
	for _, k := range []*KeyReport{r.CA, r.Issuer, r.ICC, r.PIN} {
		if k != nil {
			out = append(out, k)
		}
	}
	return out
}

// Describe renders the report as text.
func (r *Report) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV KEY REPORT ===")
	sb.WriteString(fmt.Sprintf("\n    - Session: %s", r.Session))
	sb.WriteString(fmt.Sprintf("\n    - Scheme: %s (RID %s, CA index %02X)", r.Scheme, r.RID, r.Index))

	if r.Card != nil {
		sb.WriteString("\n")
		sb.WriteString(r.Card.Describe())
	}

	for _, k := range r.Keys() {
		sb.WriteString("\n")
		sb.WriteString(k.Describe())
	}

	return sb.String()
}

// Describe renders one key level.
func (k *KeyReport) Describe() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s PUBLIC KEY ===", strings.ToUpper(k.Kind.String())))

	if k.Key == nil {
		sb.WriteString(fmt.Sprintf("\n    - Error: %s", k.Error))
		return sb.String()
	}

	sb.WriteString(fmt.Sprintf("\n    - Format: %s", k.Kind.Format()))
	sb.WriteString(fmt.Sprintf("\n    - Size: %d bits", k.Bits))
	sb.WriteString(fmt.Sprintf("\n    - Modulus: %s", k.Key.Modulus))
	sb.WriteString(fmt.Sprintf("\n    - Exponent: %s", k.Key.Exponent))
	if !k.Key.Expiry.IsZero() {
		sb.WriteString(fmt.Sprintf("\n    - Expiry: %s", k.Key.Expiry.Format(time.DateOnly)))
	}
	if k.Expired {
		sb.WriteString("\n    - Expired: yes")
	}
	if k.Valid != nil {
		sb.WriteString(fmt.Sprintf("\n    - Hash Valid: %s", yesNo(*k.Valid)))
	}
	sb.WriteString(fmt.Sprintf("\n    - ROCA Vulnerable: %s", yesNo(k.ROCA)))
	if k.Error != "" {
		sb.WriteString(fmt.Sprintf("\n    - Error: %s", k.Error))
	}

	return sb.String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
