package emvcert

import "errors"

var (
	// ErrCertificateFormat reports a structural violation in a recovered certificate.
	ErrCertificateFormat = errors.New("invalid certificate format")

	// ErrKeyLength reports an exponent whose length differs from the one declared in the certificate.
	ErrKeyLength = errors.New("public key exponent length mismatch")
)
