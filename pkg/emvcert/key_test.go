package emvcert_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gregLibert/emv-keys/pkg/emvcert"
	"github.com/gregLibert/emv-keys/pkg/emvcert/emvcerttest"
	"github.com/gregLibert/emv-keys/pkg/tlv"
)

func TestPublicKey_JSONRoundTrip(t *testing.T) {
	ca := emvcerttest.NewAuthority(t, 1024)
	issuer := emvcerttest.NewAuthority(t, 1536)

	c := ca.Issue(issuerTemplate(issuer.Modulus(), tlv.Hex("03")))
	key, err := emvcert.RecoverIssuerKey(ca.PublicKey(emvcert.KindCA), c.Certificate, c.Remainder, c.Exponent)
	require.NoError(t, err)

	data, err := json.Marshal(key)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"kind":"Issuer"`)
	assert.Contains(t, string(data), `"modulus":"`+tlv.HexBytes(issuer.Modulus()).String()+`"`)

	var back emvcert.PublicKey
	require.NoError(t, json.Unmarshal(data, &back))

	if diff := cmp.Diff(key, &back); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestKind_UnmarshalText(t *testing.T) {
	for _, want := range []emvcert.Kind{emvcert.KindCA, emvcert.KindIssuer, emvcert.KindICC, emvcert.KindPIN} {
		text, err := want.MarshalText()
		require.NoError(t, err)

		var got emvcert.Kind
		require.NoError(t, got.UnmarshalText(text))
		assert.Equal(t, want, got)
	}

	var k emvcert.Kind
	assert.Error(t, k.UnmarshalText([]byte("Acquirer")))
}
