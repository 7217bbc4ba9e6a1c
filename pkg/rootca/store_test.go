package rootca

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gregLibert/emv-keys/pkg/emvcert"
	"github.com/gregLibert/emv-keys/pkg/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalog = `
A000000003:
  scheme: VISA
  keys:
    - index: 0x95
      modulus: BE9E1FA5E9A803852999C4AB43 2DB28600DCD9DAB76DFAAA47355A0FE37B1508
      exponent: "03"
      expiry: 2028-12-31
      hashAlgorithm: 1
      keyAlgorithm: 1
      hash: EE1511CEC71020A9B90443B37B1D5F6E703030F6
    - index: 0x92
      modulus: 996AF56F569187D09293C14810450ED8EE3357397B18A2458EFAA92DA3B6DF6514EC0601
      exponent: 03
a000000004:
  scheme: MASTERCARD
  keys:
    - index: 5
      modulus: B8048ABC30C90D976336543E3FD7091C8FE4800DF820ED55E7E94813ED00555B
      exponent: "010001"
`

func loadCatalog(t *testing.T) *Store {
	t.Helper()
	s, err := Load(strings.NewReader(catalog))
	require.NoError(t, err)
	return s
}

func TestStore_Lookup(t *testing.T) {
	s := loadCatalog(t)

	key, err := s.Lookup("A000000003", 0x95)
	require.NoError(t, err)

	assert.Equal(t, "VISA", key.Scheme)
	assert.Equal(t, "A000000003", key.RID)
	assert.Equal(t, tlv.HexBytes(tlv.Hex("BE9E1FA5E9A803852999C4AB432DB28600DCD9DAB76DFAAA47355A0FE37B1508")), key.Modulus)
	assert.Equal(t, tlv.HexBytes{0x03}, key.Exponent)
	assert.Equal(t, time.Date(2028, time.December, 31, 0, 0, 0, 0, time.UTC), key.Expiry)
	assert.Equal(t, 1, key.HashAlgorithm)
	assert.Len(t, key.Hash, 20)

	pub := key.PublicKey()
	assert.Equal(t, emvcert.KindCA, pub.Kind)
	assert.Equal(t, 256, pub.Bits())

	// RIDs are case-insensitive on both sides
	key, err = s.Lookup("a000000004", 5)
	require.NoError(t, err)
	assert.Equal(t, tlv.HexBytes(tlv.Hex("010001")), key.Exponent)

	key, err = s.Lookup("A000000003", 0x92)
	require.NoError(t, err)
	assert.Equal(t, tlv.HexBytes{0x03}, key.Exponent, "unquoted exponent is read as hex text")
	assert.True(t, key.Expiry.IsZero())
}

func TestStore_LookupNotFound(t *testing.T) {
	s := loadCatalog(t)

	tests := []struct {
		name      string
		rid       string
		index     int
		wantMsg   string
		wantError NotFoundError
	}{
		{
			name:      "Unknown index",
			rid:       "A000000003",
			index:     0x99,
			wantMsg:   "root CA key index 99 missing for VISA (RID A000000003)",
			wantError: NotFoundError{RID: "A000000003", Index: 0x99, Scheme: "VISA"},
		},
		{
			name:      "Unknown RID",
			rid:       "A000000025",
			index:     0x0F,
			wantMsg:   "no root CA keys for RID A000000025 (index 0F)",
			wantError: NotFoundError{RID: "A000000025", Index: 0x0F},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := s.Lookup(tt.rid, tt.index)
			assert.Nil(t, key)
			require.ErrorIs(t, err, ErrNotFound)

			var nf *NotFoundError
			require.True(t, errors.As(err, &nf))
			assert.Equal(t, tt.wantError, *nf)
			assert.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestStore_Schemes(t *testing.T) {
	schemes := loadCatalog(t).Schemes()

	require.Len(t, schemes, 2)
	assert.Equal(t, "A000000003", schemes[0].RID)
	assert.Equal(t, "A000000004", schemes[1].RID)

	require.Len(t, schemes[0].Keys, 2)
	assert.Equal(t, 0x92, schemes[0].Keys[0].Index, "keys are ordered by index")
	assert.Equal(t, 0x95, schemes[0].Keys[1].Index)
}

func TestLoad_Invalid(t *testing.T) {
	tests := map[string]string{
		"Short RID":       "A0000003:\n  scheme: X\n",
		"Missing modulus": "A000000003:\n  keys:\n    - index: 1\n      exponent: \"03\"\n",
		"Bad hex":         "A000000003:\n  keys:\n    - index: 1\n      modulus: XYZ\n      exponent: \"03\"\n",
		"Bad expiry":      "A000000003:\n  keys:\n    - index: 1\n      modulus: AA\n      exponent: \"03\"\n      expiry: 12/28\n",
		"Duplicate index": "A000000003:\n  keys:\n    - {index: 1, modulus: AA, exponent: \"03\"}\n    - {index: 1, modulus: BB, exponent: \"03\"}\n",
		"Index too large": "A000000003:\n  keys:\n    - {index: 256, modulus: AA, exponent: \"03\"}\n",
		"Not a mapping":   "- A000000003\n",
	}

	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestLoad_Empty(t *testing.T) {
	s, err := Load(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, s.Schemes())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ca_keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte(catalog), 0o600))

	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, s.Schemes(), 2)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
