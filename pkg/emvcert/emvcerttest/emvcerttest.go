// Package emvcerttest issues EMV public key certificates for tests.
//
// An Authority is a freshly generated RSA key playing the CA (or Issuer) role.
// It signs certificates the way a scheme does: the EMV Book 2 plaintext is raised
// to the private exponent (raw RSA, no padding scheme).
package emvcerttest

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"math/big"
	"sync"
	"testing"

	"github.com/gregLibert/emv-keys/pkg/emvcert"
)

var (
	mu    sync.Mutex
	cache = map[int]*rsa.PrivateKey{}
)

// Authority signs certificates with an RSA private key.
type Authority struct {
	Key *rsa.PrivateKey
}

// NewAuthority returns an authority with a key of the given size.
// Keys are generated once per size and shared by the tests of a package.
func NewAuthority(tb testing.TB, bits int) *Authority {
	tb.Helper()
	mu.Lock()
	defer mu.Unlock()

	if k, ok := cache[bits]; ok {
		return &Authority{Key: k}
	}
	k, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		tb.Fatalf("generating %d-bit key: %v", bits, err)
	}
	cache[bits] = k
	return &Authority{Key: k}
}

// Modulus returns the authority modulus bytes.
func (a *Authority) Modulus() []byte {
	return a.Key.N.Bytes()
}

// Exponent returns the authority public exponent bytes.
func (a *Authority) Exponent() []byte {
	return big.NewInt(int64(a.Key.E)).Bytes()
}

// PublicKey exposes the authority as a key of the chain.
func (a *Authority) PublicKey(kind emvcert.Kind) *emvcert.PublicKey {
	return &emvcert.PublicKey{Kind: kind, Modulus: a.Modulus(), Exponent: a.Exponent()}
}

// Sign raises data to the private exponent. The result has the modulus length.
func (a *Authority) Sign(data []byte) []byte {
	m := new(big.Int).SetBytes(data)
	s := new(big.Int).Exp(m, a.Key.D, a.Key.N)
	return s.FillBytes(make([]byte, a.Key.Size()))
}

// Template describes the certificate to issue. Zero values take defaults.
type Template struct {
	Header        byte // default 6A
	Format        byte
	Identifier    []byte
	Expiry        []byte // MMYY BCD, default 12/30
	Serial        []byte // default 000001
	HashAlgorithm byte   // default 01
	KeyAlgorithm  byte   // default 01
	Trailer       byte   // default BC

	// Modulus and Exponent of the certified key.
	Modulus  []byte
	Exponent []byte
}

// Certificate is an issued certificate with the card data that goes with it.
type Certificate struct {
	Certificate []byte
	Remainder   []byte
	Exponent    []byte

	// Plain is the signed plaintext, as recovery must reproduce it.
	Plain []byte
}

// Issue builds and signs a certificate. The key digits that do not fit in the
// certificate go to the remainder; a short key is padded with 'BB'.
func (a *Authority) Issue(tpl Template) Certificate {
	header := or(tpl.Header, 0x6A)
	trailer := or(tpl.Trailer, 0xBC)
	hashAlg := or(tpl.HashAlgorithm, 0x01)
	keyAlg := or(tpl.KeyAlgorithm, 0x01)
	expiry := tpl.Expiry
	if expiry == nil {
		expiry = []byte{0x12, 0x30}
	}
	serial := tpl.Serial
	if serial == nil {
		serial = []byte{0x00, 0x00, 0x01}
	}

	overhead := 32 + len(tpl.Identifier)
	reserved := a.Key.Size() - overhead

	var leftmost, padding, remainder []byte
	if len(tpl.Modulus) <= reserved {
		leftmost = tpl.Modulus
		padding = bytes.Repeat([]byte{0xBB}, reserved-len(tpl.Modulus))
	} else {
		leftmost = tpl.Modulus[:reserved]
		remainder = tpl.Modulus[reserved:]
	}

	var body bytes.Buffer
	body.WriteByte(tpl.Format)
	body.Write(tpl.Identifier)
	body.Write(expiry)
	body.Write(serial)
	body.Write([]byte{hashAlg, keyAlg, byte(len(tpl.Modulus)), byte(len(tpl.Exponent))})
	body.Write(leftmost)
	body.Write(padding)

	h := sha1.New()
	h.Write(body.Bytes())
	h.Write(remainder)
	h.Write(tpl.Exponent)

	plain := append([]byte{header}, body.Bytes()...)
	plain = append(plain, h.Sum(nil)...)
	plain = append(plain, trailer)

	return Certificate{
		Certificate: a.Sign(plain),
		Remainder:   remainder,
		Exponent:    tpl.Exponent,
		Plain:       plain,
	}
}

// RandomModulus returns n random bytes with the top bit set.
func RandomModulus(tb testing.TB, n int) []byte {
	tb.Helper()
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		tb.Fatalf("reading random bytes: %v", err)
	}
	b[0] |= 0x80
	return b
}

func or(v, def byte) byte {
	if v == 0 {
		return def
	}
	return v
}
