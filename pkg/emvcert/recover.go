package emvcert

import (
	"bytes"
	"crypto/sha1"
	"fmt"
	"math/big"
)

const (
	recoveredDataHeader  = 0x6A
	recoveredDataTrailer = 0xBC
	hashAlgorithmSHA1    = 0x01
	keyAlgorithmRSA      = 0x01
	hashLength           = sha1.Size
)

// layout describes one certificate level. Issuer and ICC certificates only
// differ by the format byte and the size of the identifier field.
type layout struct {
	kind     Kind
	format   byte
	idLength int
}

var (
	issuerLayout = layout{kind: KindIssuer, format: 0x02, idLength: 4}
	iccLayout    = layout{kind: KindICC, format: 0x04, idLength: 10}
	pinLayout    = layout{kind: KindPIN, format: 0x04, idLength: 10}
)

// overhead is the number of fixed bytes around the key digits field.
func (l layout) overhead() int {
	// header, format, id, expiry(2), serial(3), hash algo, key algo, key len, exp len, hash, trailer
	return 1 + 1 + l.idLength + 2 + 3 + 1 + 1 + 1 + 1 + hashLength + 1
}

// certFields holds every positional field of a recovered certificate.
type certFields struct {
	format         byte
	identifier     []byte
	expiry         []byte
	serial         []byte
	hashAlgorithm  byte
	keyAlgorithm   byte
	keyLength      int
	exponentLength int
	leftmost       []byte
	padding        []byte
	hash           []byte
}

// cursor reads consecutive fields and remembers the first overrun.
type cursor struct {
	data []byte
	off  int
	err  error
}

func (c *cursor) next(n int) []byte {
	if c.err != nil {
		return nil
	}
	if n < 0 || c.off+n > len(c.data) {
		c.err = fmt.Errorf("%w: certificate truncated at offset %d (need %d bytes, %d left)",
			ErrCertificateFormat, c.off, n, len(c.data)-c.off)
		return nil
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b
}

func (c *cursor) readByte() byte {
	if b := c.next(1); b != nil {
		return b[0]
	}
	return 0
}

// recoverBytes computes cert^e mod n with the signer key, as an unsigned big-endian integer.
func recoverBytes(cert []byte, signer *PublicKey) []byte {
	c := new(big.Int).SetBytes(cert)
	return c.Exp(c, signer.E(), signer.N()).Bytes()
}

// parse applies the positional layout to the recovered data.
func (l layout) parse(recovered []byte, signerLength int) (*certFields, error) {
	reserved := signerLength - l.overhead()
	if reserved <= 0 {
		return nil, fmt.Errorf("%w: signer modulus of %d bytes is too short for a %s certificate",
			ErrCertificateFormat, signerLength, l.kind)
	}

	c := &cursor{data: recovered}
	f := &certFields{}

	if h := c.readByte(); c.err == nil && h != recoveredDataHeader {
		return nil, fmt.Errorf("%w: incorrect header %02X", ErrCertificateFormat, h)
	}
	if f.format = c.readByte(); c.err == nil && f.format != l.format {
		return nil, fmt.Errorf("%w: unknown certificate format %02X", ErrCertificateFormat, f.format)
	}
	f.identifier = c.next(l.idLength)
	f.expiry = c.next(2)
	f.serial = c.next(3)
	if f.hashAlgorithm = c.readByte(); c.err == nil && f.hashAlgorithm != hashAlgorithmSHA1 {
		return nil, fmt.Errorf("%w: hash algorithm indicator %02X, only SHA-1 (01) is allowed",
			ErrCertificateFormat, f.hashAlgorithm)
	}
	if f.keyAlgorithm = c.readByte(); c.err == nil && f.keyAlgorithm != keyAlgorithmRSA {
		return nil, fmt.Errorf("%w: public key algorithm indicator %02X, only RSA (01) is allowed",
			ErrCertificateFormat, f.keyAlgorithm)
	}
	f.keyLength = int(c.readByte())
	f.exponentLength = int(c.readByte())

	digits, padding := reserved, 0
	if f.keyLength < reserved {
		digits, padding = f.keyLength, reserved-f.keyLength
	}
	f.leftmost = c.next(digits)
	f.padding = c.next(padding)
	f.hash = c.next(hashLength)

	if t := c.readByte(); c.err == nil && t != recoveredDataTrailer {
		return nil, fmt.Errorf("%w: incorrect trailer %02X", ErrCertificateFormat, t)
	}
	if c.err != nil {
		return nil, c.err
	}
	if c.off != len(recovered) {
		return nil, fmt.Errorf("%w: %d bytes left after trailer", ErrCertificateFormat, len(recovered)-c.off)
	}
	return f, nil
}

// open recovers and parses a certificate signed by signer.
func (l layout) open(signer *PublicKey, cert []byte) (*certFields, error) {
	if signer == nil || signer.N().Sign() == 0 {
		return nil, fmt.Errorf("%w: missing signer key", ErrCertificateFormat)
	}
	if len(cert) == 0 {
		return nil, fmt.Errorf("%w: empty %s certificate", ErrCertificateFormat, l.kind)
	}
	return l.parse(recoverBytes(cert, signer), signer.Size())
}

// recover rebuilds the public key certified by signer.
func (l layout) recover(signer *PublicKey, cert, remainder, exponent []byte) (*PublicKey, error) {
	f, err := l.open(signer, cert)
	if err != nil {
		return nil, err
	}

	expiry, err := ParseExpiry(f.expiry)
	if err != nil {
		return nil, err
	}

	if f.exponentLength != len(exponent) {
		return nil, fmt.Errorf("%w: %s certificate declares %d bytes, got %d",
			ErrKeyLength, l.kind, f.exponentLength, len(exponent))
	}

	modulus := make([]byte, 0, len(f.leftmost)+len(remainder))
	modulus = append(modulus, f.leftmost...)
	modulus = append(modulus, remainder...)

	return &PublicKey{
		Kind:        l.kind,
		Modulus:     modulus,
		Exponent:    append([]byte(nil), exponent...),
		Expiry:      expiry,
		Certificate: append([]byte(nil), cert...),
	}, nil
}

// validate recomputes the certificate hash and compares it with the embedded one.
func (l layout) validate(signer *PublicKey, cert, remainder, exponent []byte) (bool, error) {
	f, err := l.open(signer, cert)
	if err != nil {
		return false, err
	}

	h := sha1.New()
	h.Write([]byte{f.format})
	h.Write(f.identifier)
	h.Write(f.expiry)
	h.Write(f.serial)
	h.Write([]byte{f.hashAlgorithm, f.keyAlgorithm, byte(f.keyLength), byte(f.exponentLength)})
	h.Write(f.leftmost)
	h.Write(f.padding)
	h.Write(remainder)
	h.Write(exponent)

	return bytes.Equal(h.Sum(nil), f.hash), nil
}

// RecoverIssuerKey recovers the Issuer public key from its certificate (Tag '90'),
// remainder ('92', may be empty) and exponent ('9F32') using the scheme CA key.
func RecoverIssuerKey(ca *PublicKey, cert, remainder, exponent []byte) (*PublicKey, error) {
	return issuerLayout.recover(ca, cert, remainder, exponent)
}

// ValidateIssuerKey checks the hash embedded in the Issuer certificate.
// A mismatch is reported as false; structural problems as errors.
func ValidateIssuerKey(ca *PublicKey, cert, remainder, exponent []byte) (bool, error) {
	return issuerLayout.validate(ca, cert, remainder, exponent)
}

// RecoverICCKey recovers the ICC public key from its certificate ('9F46'),
// remainder ('9F48', may be empty) and exponent ('9F47') using the Issuer key.
func RecoverICCKey(issuer *PublicKey, cert, remainder, exponent []byte) (*PublicKey, error) {
	return iccLayout.recover(issuer, cert, remainder, exponent)
}

// ValidateICCKey checks the hash embedded in the ICC certificate.
//
// The ICC hash also covers the static data to be authenticated (the AFL records
// flagged for offline data authentication, EMV Book 3 section 10.3), which is not
// part of the input: on a real card this returns false even for a genuine key.
func ValidateICCKey(issuer *PublicKey, cert, remainder, exponent []byte) (bool, error) {
	return iccLayout.validate(issuer, cert, remainder, exponent)
}

// RecoverPINKey recovers the ICC PIN Encipherment public key ('9F2D', '9F2F', '9F2E')
// using the Issuer key. Its certificate shares the ICC layout.
func RecoverPINKey(issuer *PublicKey, cert, remainder, exponent []byte) (*PublicKey, error) {
	return pinLayout.recover(issuer, cert, remainder, exponent)
}

// ValidatePINKey checks the hash embedded in the ICC PIN Encipherment certificate.
func ValidatePINKey(issuer *PublicKey, cert, remainder, exponent []byte) (bool, error) {
	return pinLayout.validate(issuer, cert, remainder, exponent)
}
