/*
Package emvcert recovers the RSA public keys of the EMV offline authentication chain.

A terminal knows the scheme Root-CA keys. The card carries:
  - the Issuer Public Key Certificate (Tag '90'), signed by the CA key, plus the
    Issuer remainder ('92') and exponent ('9F32');
  - the ICC Public Key Certificate ('9F46'), signed by the Issuer key, plus the
    ICC remainder ('9F48') and exponent ('9F47');
  - optionally the ICC PIN Encipherment Public Key Certificate ('9F2D') with its
    remainder ('9F2F') and exponent ('9F2E'), also signed by the Issuer key.

Recovery is RSA signature recovery (cert^e mod n with the signer public key) followed
by the positional parse of EMV Book 2 (sections 5.3 and 6.3):

	Header '6A' | Format | Identifier | Expiry MMYY | Serial (3) | Hash Algo | Key Algo |
	Key Length | Exponent Length | Leftmost Key Digits [| Padding 'BB'...] | Hash (20) | Trailer 'BC'

The Identifier is 4 bytes (issuer BIN) at the Issuer level and 10 bytes (PAN) at the ICC level,
so the fixed part of a certificate is 36 or 42 bytes and the key digits field holds
(signer modulus length - 36) or (signer modulus length - 42) bytes.
*/
package emvcert
