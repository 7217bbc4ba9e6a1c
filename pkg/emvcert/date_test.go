package emvcert_test

import (
	"testing"
	"time"

	"github.com/gregLibert/emv-keys/pkg/emvcert"
	"github.com/gregLibert/emv-keys/pkg/tlv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseExpiry(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"0125", time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)},
		{"0224", time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC)},
		{"0223", time.Date(2023, time.February, 28, 0, 0, 0, 0, time.UTC)},
		{"0430", time.Date(2030, time.April, 30, 0, 0, 0, 0, time.UTC)},
		{"1299", time.Date(2099, time.December, 31, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := emvcert.ParseExpiry(tlv.Hex(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseExpiry_Invalid(t *testing.T) {
	for _, in := range []string{"0025", "1325", "0A25", "01F0", "01", "012501"} {
		t.Run(in, func(t *testing.T) {
			_, err := emvcert.ParseExpiry(tlv.Hex(in))
			assert.ErrorIs(t, err, emvcert.ErrCertificateFormat)
		})
	}
}

func TestPublicKey_IsExpired(t *testing.T) {
	key := &emvcert.PublicKey{Expiry: time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)}

	assert.False(t, key.IsExpired(time.Date(2025, time.January, 31, 23, 59, 59, 0, time.UTC)), "valid through the last day")
	assert.True(t, key.IsExpired(time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.False(t, (&emvcert.PublicKey{}).IsExpired(time.Now()), "CA keys without expiry never expire")
}

func TestKind(t *testing.T) {
	text, err := emvcert.KindICC.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "ICC", string(text))
	assert.Equal(t, "IssuerPublicKeyCertificate", emvcert.KindIssuer.Format())
	assert.Equal(t, "Kind(9)", emvcert.Kind(9).String())
}
