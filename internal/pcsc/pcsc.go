// Package pcsc connects to a card through the platform PC/SC service.
package pcsc

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ebfe/scard"
	"github.com/rs/zerolog"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// ErrNoReader is returned when no PC/SC reader matches the request.
var ErrNoReader = errors.New("no smart card reader found")

// Session is one card connection. It implements iso7816.Transmitter.
type Session struct {
	Reader string

	ctx  *scard.Context
	card *scard.Card
	log  zerolog.Logger
}

// ListReaders returns the reader names known to the PC/SC service.
func ListReaders() ([]string, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establishing context: %w", err)
	}
	defer ctx.Release() //nolint:errcheck

	readers, err := ctx.ListReaders()
	if err != nil {
		if errors.Is(err, scard.ErrNoReadersAvailable) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing readers: %w", err)
	}

	return readers, nil
}

// Open connects to the reader designated by selector: a decimal index into
// the reader list or a substring of the reader name.
func Open(selector string, logger zerolog.Logger) (*Session, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("establishing context: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil && !errors.Is(err, scard.ErrNoReadersAvailable) {
		release(ctx, logger)
		return nil, fmt.Errorf("listing readers: %w", err)
	}

	reader, err := PickReader(readers, selector)
	if err != nil {
		release(ctx, logger)
		return nil, err
	}

	// Force T=0 or T=1 to avoid "Parameter Incorrect" errors (Error 57)
	card, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolT0|scard.ProtocolT1)
	if err != nil {
		release(ctx, logger)
		return nil, fmt.Errorf("connecting to %q: %w", reader, err)
	}

	s := &Session{
		Reader: reader,
		ctx:    ctx,
		card:   card,
		log:    logger.With().Str("reader", reader).Logger(),
	}

	if status, err := card.Status(); err == nil {
		s.log.Info().Str("atr", tlv.HexBytes(status.Atr).String()).Msg("card connected")
	}

	return s, nil
}

// PickReader resolves selector against the reader list.
// An empty selector picks the first reader.
func PickReader(readers []string, selector string) (string, error) {
	if len(readers) == 0 {
		return "", ErrNoReader
	}

	if selector == "" {
		return readers[0], nil
	}

	if i, err := strconv.Atoi(selector); err == nil {
		if i < 0 || i >= len(readers) {
			return "", fmt.Errorf("%w: index %d out of range (0..%d)", ErrNoReader, i, len(readers)-1)
		}
		return readers[i], nil
	}

	for _, r := range readers {
		if strings.Contains(strings.ToLower(r), strings.ToLower(selector)) {
			return r, nil
		}
	}

	return "", fmt.Errorf("%w: no reader matching %q", ErrNoReader, selector)
}

// Transmit sends one raw APDU and returns the raw response (data + SW).
func (s *Session) Transmit(cmd []byte) ([]byte, error) {
	if s.card == nil {
		return nil, errors.New("session closed")
	}

	rsp, err := s.card.Transmit(cmd)
	if err != nil {
		return nil, fmt.Errorf("transmit on %q: %w", s.Reader, err)
	}

	return rsp, nil
}

// Close disconnects the card and releases the PC/SC context.
// Any Transmit after Close fails.
func (s *Session) Close() error {
	var errs []error

	if s.card != nil {
		if err := s.card.Disconnect(scard.LeaveCard); err != nil {
			errs = append(errs, fmt.Errorf("disconnecting card: %w", err))
		}
		s.card = nil
	}

	if s.ctx != nil {
		if err := s.ctx.Release(); err != nil {
			errs = append(errs, fmt.Errorf("releasing context: %w", err))
		}
		s.ctx = nil
	}

	return errors.Join(errs...)
}

func release(ctx *scard.Context, logger zerolog.Logger) {
	if err := ctx.Release(); err != nil {
		logger.Warn().Err(err).Msg("failed to release context during error handling")
	}
}
