// Package inspect walks the public key chain of a card: it looks the scheme CA
// key up in the catalog, recovers the Issuer key from it, then the ICC and PIN
// encipherment keys from the Issuer key, and screens every modulus for ROCA.
package inspect

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gregLibert/emv-keys/pkg/emv"
	"github.com/gregLibert/emv-keys/pkg/emvcert"
	"github.com/gregLibert/emv-keys/pkg/roca"
	"github.com/gregLibert/emv-keys/pkg/rootca"
)

var (
	// ErrNoAID is returned for a card without a selected application.
	ErrNoAID = errors.New("card has no application identifier")
	// ErrNoCAIndex is returned for a card that does not name its CA key (tag 8F).
	ErrNoCAIndex = errors.New("card has no CA public key index")
)

// Inspector runs the chain against one catalog.
type Inspector struct {
	Store *rootca.Store
	Log   zerolog.Logger
	Now   func() time.Time

	// Session identifies the report. A random id is used when empty.
	Session string
}

// New returns an Inspector over store.
func New(store *rootca.Store, logger zerolog.Logger) *Inspector {
	return &Inspector{Store: store, Log: logger, Now: time.Now}
}

// Inspect runs the chain with a default Inspector.
func Inspect(card *emv.Card, store *rootca.Store) (*Report, error) {
	return New(store, zerolog.Nop()).Inspect(card)
}

// Inspect builds the report for card.
//
// A card without AID or CA index, or whose CA key is missing from the catalog,
// is an error. Recovery problems are not: they are recorded on the key level
// where they happened and stop the chain below it.
func (in *Inspector) Inspect(card *emv.Card) (*Report, error) {
	if card == nil || len(card.AID) < emv.RIDLength {
		return nil, ErrNoAID
	}
	if card.CAPublicKeyIndex == nil {
		return nil, ErrNoCAIndex
	}

	session := in.Session
	if session == "" {
		session = uuid.NewString()
	}

	now := time.Now
	if in.Now != nil {
		now = in.Now
	}

	log := in.Log.With().Str("session", session).Str("rid", card.RID()).Logger()

	index := int(*card.CAPublicKeyIndex)
	caKey, err := in.Store.Lookup(card.RID(), index)
	if err != nil {
		return nil, err
	}

	r := &Report{
		Session:   session,
		Scheme:    caKey.Scheme,
		RID:       caKey.RID,
		Index:     index,
		Card:      card,
		CheckedAt: now().UTC(),
	}

	r.CA = newKeyReport(caKey.PublicKey(), now())
	log.Debug().Int("index", index).Int("bits", r.CA.Bits).Msg("CA key found")

	if len(card.IssuerPublicKeyCertificate) == 0 || len(card.IssuerPublicKeyExponent) == 0 {
		log.Info().Msg("card carries no issuer public key certificate")
		return r, nil
	}

	r.Issuer = chain(log, now(), emvcert.KindIssuer, caKey.PublicKey(),
		card.IssuerPublicKeyCertificate, card.IssuerPublicKeyRemainder, card.IssuerPublicKeyExponent,
		emvcert.RecoverIssuerKey, emvcert.ValidateIssuerKey)
	if r.Issuer.Key == nil {
		return r, nil
	}

	if len(card.ICCPublicKeyCertificate) > 0 && len(card.ICCPublicKeyExponent) > 0 {
		r.ICC = chain(log, now(), emvcert.KindICC, r.Issuer.Key,
			card.ICCPublicKeyCertificate, card.ICCPublicKeyRemainder, card.ICCPublicKeyExponent,
			emvcert.RecoverICCKey, emvcert.ValidateICCKey)
	}

	if len(card.PINPublicKeyCertificate) > 0 && len(card.PINPublicKeyExponent) > 0 {
		r.PIN = chain(log, now(), emvcert.KindPIN, r.Issuer.Key,
			card.PINPublicKeyCertificate, card.PINPublicKeyRemainder, card.PINPublicKeyExponent,
			emvcert.RecoverPINKey, emvcert.ValidatePINKey)
	}

	return r, nil
}

type (
	recoverFunc  func(signer *emvcert.PublicKey, cert, remainder, exponent []byte) (*emvcert.PublicKey, error)
	validateFunc func(signer *emvcert.PublicKey, cert, remainder, exponent []byte) (bool, error)
)

func chain(
	log zerolog.Logger,
	now time.Time,
	kind emvcert.Kind,
	signer *emvcert.PublicKey,
	cert, remainder, exponent []byte,
	recoverKey recoverFunc,
	validateKey validateFunc,
) *KeyReport {
	key, err := recoverKey(signer, cert, remainder, exponent)
	if err != nil {
		log.Warn().Err(err).Stringer("kind", kind).Msg("key recovery failed")
		return &KeyReport{Kind: kind, Err: err, Error: err.Error()}
	}

	kr := newKeyReport(key, now)

	valid, err := validateKey(signer, cert, remainder, exponent)
	if err != nil {
		kr.Err = fmt.Errorf("validating %s key: %w", kind, err)
		kr.Error = kr.Err.Error()
	}
	kr.Valid = &valid

	log.Info().
		Stringer("kind", kind).
		Int("bits", kr.Bits).
		Bool("valid", valid).
		Bool("roca", kr.ROCA).
		Msg("key recovered")

	return kr
}

func newKeyReport(key *emvcert.PublicKey, now time.Time) *KeyReport {
	return &KeyReport{
		Kind:    key.Kind,
		Key:     key,
		Bits:    key.Bits(),
		Expired: key.IsExpired(now),
		ROCA:    roca.IsAffected(key.N()),
	}
}
