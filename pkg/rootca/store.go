// Package rootca holds the published Root-CA public keys of the payment schemes.
//
// The catalog is a YAML document keyed by RID:
//
//	A000000003:
//	  scheme: VISA
//	  keys:
//	    - index: 0x92
//	      modulus: 996AF56F569187D09293C14810450ED8EE3357397B18A2458EFAA92DA3B6DF6514EC0601...
//	      exponent: "03"
//	      expiry: 2028-12-31
//	      hashAlgorithm: 1
//	      keyAlgorithm: 1
//	      hash: 429C954A3859CEF91295F663C963E582ED6EB253
//
// A Store is built once and never modified: it is safe for concurrent lookups.
package rootca

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/gregLibert/emv-keys/pkg/emvcert"
	"github.com/gregLibert/emv-keys/pkg/tlv"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("root CA key not found")

// NotFoundError names the scheme and key index missing from the catalog.
type NotFoundError struct {
	RID    string
	Index  int
	Scheme string
}

func (e *NotFoundError) Error() string {
	if e.Scheme == "" {
		return fmt.Sprintf("no root CA keys for RID %s (index %02X)", e.RID, e.Index)
	}
	return fmt.Sprintf("root CA key index %02X missing for %s (RID %s)", e.Index, e.Scheme, e.RID)
}

// Is makes errors.Is(err, ErrNotFound) true.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// CAKey is a catalog entry.
type CAKey struct {
	RID    string
	Scheme string
	Index  int

	Modulus  tlv.HexBytes
	Exponent tlv.HexBytes
	Expiry   time.Time

	// HashAlgorithm, KeyAlgorithm and Hash are published with the key. They are kept
	// as-is: the hash covers the key itself and is not needed to recover issuer keys.
	HashAlgorithm int
	KeyAlgorithm  int
	Hash          tlv.HexBytes
}

// PublicKey returns the key in the form used by certificate recovery.
func (k *CAKey) PublicKey() *emvcert.PublicKey {
	return &emvcert.PublicKey{
		Kind:     emvcert.KindCA,
		Modulus:  k.Modulus,
		Exponent: k.Exponent,
		Expiry:   k.Expiry,
	}
}

// Scheme lists the keys of one RID, ordered by index.
type Scheme struct {
	RID  string
	Name string
	Keys []*CAKey
}

// Store is an immutable catalog of Root-CA keys.
type Store struct {
	schemes map[string]*Scheme
}

type catalogScheme struct {
	Scheme string       `yaml:"scheme"`
	Keys   []catalogKey `yaml:"keys"`
}

type catalogKey struct {
	Index         int          `yaml:"index"`
	Modulus       tlv.HexBytes `yaml:"modulus"`
	Exponent      tlv.HexBytes `yaml:"exponent"`
	Expiry        string       `yaml:"expiry"`
	HashAlgorithm int          `yaml:"hashAlgorithm"`
	KeyAlgorithm  int          `yaml:"keyAlgorithm"`
	Hash          tlv.HexBytes `yaml:"hash"`
}

// Load reads a YAML catalog.
func Load(r io.Reader) (*Store, error) {
	var doc map[string]catalogScheme
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	s := &Store{schemes: make(map[string]*Scheme, len(doc))}
	for rid, entry := range doc {
		rid = strings.ToUpper(rid)
		if len(rid) != 10 {
			return nil, fmt.Errorf("invalid RID %q: must be 5 bytes of hex", rid)
		}
		if _, dup := s.schemes[rid]; dup {
			return nil, fmt.Errorf("duplicate RID %s", rid)
		}

		scheme := &Scheme{RID: rid, Name: entry.Scheme}
		seen := map[int]bool{}
		for _, ck := range entry.Keys {
			key, err := ck.toKey(rid, entry.Scheme)
			if err != nil {
				return nil, err
			}
			if seen[key.Index] {
				return nil, fmt.Errorf("RID %s: duplicate key index %02X", rid, key.Index)
			}
			seen[key.Index] = true
			scheme.Keys = append(scheme.Keys, key)
		}
		sort.Slice(scheme.Keys, func(i, j int) bool { return scheme.Keys[i].Index < scheme.Keys[j].Index })

		s.schemes[rid] = scheme
	}
	return s, nil
}

// LoadFile reads a YAML catalog from disk.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()

	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func (ck catalogKey) toKey(rid, scheme string) (*CAKey, error) {
	if ck.Index < 0 || ck.Index > 0xFF {
		return nil, fmt.Errorf("RID %s: key index %d out of range", rid, ck.Index)
	}
	if len(ck.Modulus) == 0 || len(ck.Exponent) == 0 {
		return nil, fmt.Errorf("RID %s index %02X: modulus and exponent are required", rid, ck.Index)
	}

	key := &CAKey{
		RID:           rid,
		Scheme:        scheme,
		Index:         ck.Index,
		Modulus:       ck.Modulus,
		Exponent:      ck.Exponent,
		HashAlgorithm: ck.HashAlgorithm,
		KeyAlgorithm:  ck.KeyAlgorithm,
		Hash:          ck.Hash,
	}
	if ck.Expiry != "" {
		t, err := time.Parse(time.DateOnly, ck.Expiry)
		if err != nil {
			return nil, fmt.Errorf("RID %s index %02X: invalid expiry: %w", rid, ck.Index, err)
		}
		key.Expiry = t
	}
	return key, nil
}

// Lookup returns the key of a scheme (RID as hex, case-insensitive) by index.
func (s *Store) Lookup(rid string, index int) (*CAKey, error) {
	rid = strings.ToUpper(rid)

	scheme, ok := s.schemes[rid]
	if !ok {
		return nil, &NotFoundError{RID: rid, Index: index}
	}
	for _, k := range scheme.Keys {
		if k.Index == index {
			return k, nil
		}
	}
	return nil, &NotFoundError{RID: rid, Index: index, Scheme: scheme.Name}
}

// Schemes returns the catalog content ordered by RID.
func (s *Store) Schemes() []Scheme {
	out := make([]Scheme, 0, len(s.schemes))
	for _, sc := range s.schemes {
		out = append(out, *sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RID < out[j].RID })
	return out
}
