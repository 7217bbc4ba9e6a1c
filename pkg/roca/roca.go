// Package roca detects RSA moduli generated by the vulnerable Infineon RSALib
// ("Return of Coppersmith's Attack", CVE-2017-15361).
//
// Primes produced by the library have the form k*M + (65537^a mod M) where M is a
// primorial. Their product N therefore falls, modulo each small prime p of M, into the
// multiplicative subgroup generated by 65537. A modulus whose residues all land in
// those subgroups is fingerprinted as vulnerable; a random modulus passes the test
// with negligible probability.
package roca

import (
	"math/big"
)

// Primes are the small primes of the fingerprint.
var Primes = []int64{
	3, 5, 7, 11, 13, 17, 19, 23, 29, 31, 37, 41, 43, 47, 53, 59, 61, 67, 71, 73,
	79, 83, 89, 97, 101, 103, 107, 109, 113, 127, 131, 137, 139, 149, 151, 157, 163, 167,
}

const generator = 65537

// fingerprints[i] has bit r set when r is in the subgroup generated by 65537 modulo Primes[i].
var fingerprints = buildFingerprints()

func buildFingerprints() []*big.Int {
	out := make([]*big.Int, len(Primes))
	for i, p := range Primes {
		set := new(big.Int)
		g := generator % p
		for r := int64(1); ; r = r * g % p {
			if set.Bit(int(r)) == 1 {
				break
			}
			set.SetBit(set, int(r), 1)
		}
		out[i] = set
	}
	return out
}

// IsAffected reports whether the modulus carries the vulnerable key generation fingerprint.
func IsAffected(modulus *big.Int) bool {
	if modulus == nil || modulus.Sign() <= 0 {
		return false
	}

	rem := new(big.Int)
	p := new(big.Int)
	for i, prime := range Primes {
		p.SetInt64(prime)
		rem.Mod(modulus, p)
		if fingerprints[i].Bit(int(rem.Int64())) == 0 {
			return false
		}
	}
	return true
}

// IsAffectedBytes is IsAffected on an unsigned big-endian modulus.
func IsAffectedBytes(modulus []byte) bool {
	return IsAffected(new(big.Int).SetBytes(modulus))
}
