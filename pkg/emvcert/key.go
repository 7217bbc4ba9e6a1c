package emvcert

import (
	"fmt"
	"math/big"
	"time"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// Kind tells which level of the chain a key belongs to.
type Kind int

const (
	KindCA Kind = iota
	KindIssuer
	KindICC
	KindPIN
)

func (k Kind) String() string {
	switch k {
	case KindCA:
		return "CA"
	case KindIssuer:
		return "Issuer"
	case KindICC:
		return "ICC"
	case KindPIN:
		return "ICC PIN Encipherment"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Format names the structure the key was taken from.
func (k Kind) Format() string {
	switch k {
	case KindCA:
		return "CA-Certificate-Public-Modulus"
	case KindIssuer:
		return "IssuerPublicKeyCertificate"
	case KindICC:
		return "ICCPublicKeyCertificate"
	case KindPIN:
		return "ICCPINEnciphermentPublicKeyCertificate"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for the String labels.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, kind := range []Kind{KindCA, KindIssuer, KindICC, KindPIN} {
		if kind.String() == string(text) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown key kind %q", text)
}

// PublicKey is an RSA public key of the chain.
// Issuer, ICC and PIN keys are only produced by recovery; CA keys come from the catalog.
type PublicKey struct {
	Kind     Kind         `json:"kind"`
	Modulus  tlv.HexBytes `json:"modulus"`
	Exponent tlv.HexBytes `json:"exponent"`

	// Expiry is the last day of the expiry month. The key is valid through that whole day.
	Expiry time.Time `json:"expiry"`

	// Certificate holds the certificate bytes the key was recovered from (empty for CA keys).
	Certificate tlv.HexBytes `json:"certificate,omitempty"`
}

// N returns the modulus as an unsigned integer.
func (k *PublicKey) N() *big.Int {
	return new(big.Int).SetBytes(k.Modulus)
}

// E returns the public exponent as an unsigned integer.
func (k *PublicKey) E() *big.Int {
	return new(big.Int).SetBytes(k.Exponent)
}

// Bits returns the size of the modulus in bits.
func (k *PublicKey) Bits() int {
	return k.N().BitLen()
}

// Size returns the length of the modulus in bytes, leading zero bytes excluded.
func (k *PublicKey) Size() int {
	return (k.Bits() + 7) / 8
}

// IsExpired reports whether the key is expired at the given instant.
func (k *PublicKey) IsExpired(now time.Time) bool {
	if k.Expiry.IsZero() {
		return false
	}
	return !now.Before(k.Expiry.AddDate(0, 0, 1))
}
