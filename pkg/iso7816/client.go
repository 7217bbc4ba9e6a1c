package iso7816

import (
	"fmt"
)

// MaxGetResponse bounds the GET RESPONSE chain of one request.
const MaxGetResponse = 16

// Transmitter is a card connection exchanging raw APDUs.
// Implementations own timeouts: closing the connection must make a pending
// Transmit return an error.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client sends commands and resolves the '61 XX' and '6C XX' procedures.
// Exchanges are strictly sequential; a Client must not be shared between goroutines.
type Client struct {
	Card Transmitter

	// OnTransaction, when set, sees every physical exchange.
	OnTransaction func(Transaction)
}

func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send runs one logical request. A '6C XX' answer is retried once with Le = XX
// ('6C XX' to the retry is returned as is); '61 XX' answers are followed with
// GET RESPONSE, at most MaxGetResponse times. Only transport and encoding
// failures are errors; card refusals are read from the returned Trace.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	var trace Trace

	status, err := c.exchange(&trace, cmd)
	if err != nil {
		return trace, err
	}

	if status.SW1() == 0x6C {
		retry := *cmd
		retry.Ne = int(status.SW2())
		if retry.Ne == 0 {
			retry.Ne = MaxShortLe
		}
		if status, err = c.exchange(&trace, &retry); err != nil {
			return trace, err
		}
	}

	for n := 0; status.SW1() == 0x61 && n < MaxGetResponse; n++ {
		if status, err = c.exchange(&trace, GetResponse(cmd.Class, int(status.SW2()))); err != nil {
			return trace, err
		}
	}

	return trace, nil
}

// exchange makes one round trip and appends it to trace.
func (c *Client) exchange(trace *Trace, cmd *CommandAPDU) (StatusWord, error) {
	raw, err := cmd.Bytes()
	if err != nil {
		return 0, fmt.Errorf("encoding %s: %w", cmd.Instruction.Raw, err)
	}

	raw, err = c.Card.Transmit(raw)
	if err != nil {
		return 0, fmt.Errorf("transmitting %s: %w", cmd.Instruction.Raw, err)
	}

	resp, err := ParseResponseAPDU(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", cmd.Instruction.Raw, err)
	}

	tx := Transaction{Command: cmd, Response: resp}
	*trace = append(*trace, tx)
	if c.OnTransaction != nil {
		c.OnTransaction(tx)
	}
	return resp.Status, nil
}
