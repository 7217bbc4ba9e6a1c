package iso7816

import (
	"fmt"

	"github.com/gregLibert/emv-keys/pkg/bits"
)

// CLASS BYTE (ISO 7816-4, section 5.4.1):
//
//	b8 = 1       proprietary class (EMV uses '80' for GPO and GET DATA)
//	b8 b7 = 00   first interindustry:   b5 chaining, b4-b3 secure messaging, b2-b1 channel 0-3
//	b8 b7 = 01   further interindustry: b6 secure messaging, b5 chaining, b4-b1 channel 4-19

// SecureMessaging is the secure messaging indication of an interindustry class.
type SecureMessaging int

const (
	SMNone         SecureMessaging = 0
	SMProprietary  SecureMessaging = 1
	SMHeaderNoProc SecureMessaging = 2
	SMHeaderAuth   SecureMessaging = 3
)

// Class is a decoded CLA byte.
type Class struct {
	Raw             byte
	IsProprietary   bool
	IsChained       bool
	SecureMessaging SecureMessaging
	Channel         uint8
}

// NewClass decodes a CLA byte. 'FF' is reserved for PPS and rejected.
func NewClass(cla byte) (Class, error) {
	if cla == 0xFF {
		return Class{}, fmt.Errorf("invalid CLA 0xFF: reserved")
	}

	c := Class{Raw: cla}
	if bits.IsSet(cla, 8) {
		c.IsProprietary = true
		return c, nil
	}

	c.IsChained = bits.IsSet(cla, 5)
	if bits.IsSet(cla, 7) {
		if bits.IsSet(cla, 6) {
			c.SecureMessaging = SMHeaderNoProc
		}
		c.Channel = bits.GetRange(cla, 4, 1) + 4
	} else {
		c.SecureMessaging = SecureMessaging(bits.GetRange(cla, 4, 3))
		c.Channel = bits.GetRange(cla, 2, 1)
	}

	return c, nil
}

// Encode rebuilds the CLA byte from the decoded fields.
// The Client relies on it to send GET RESPONSE on the channel of the original command.
func (c *Class) Encode() (byte, error) {
	if c.IsProprietary {
		return c.Raw, nil
	}
	if c.Channel > 19 {
		return 0, fmt.Errorf("logical channel %d out of range", c.Channel)
	}

	var cla byte
	if c.IsChained {
		cla = bits.Set(cla, 5)
	}

	if c.Channel < 4 {
		return cla | byte(c.SecureMessaging)<<2 | c.Channel, nil
	}

	if c.SecureMessaging == SMProprietary || c.SecureMessaging == SMHeaderAuth {
		return 0, fmt.Errorf("secure messaging %d not available on channel %d", c.SecureMessaging, c.Channel)
	}
	cla = bits.Set(cla, 7)
	if c.SecureMessaging != SMNone {
		cla = bits.Set(cla, 6)
	}
	return cla | (c.Channel - 4), nil
}

// String returns a short description of the class.
func (c Class) String() string {
	if c.IsProprietary {
		return fmt.Sprintf("CLA %02X (proprietary)", c.Raw)
	}
	s := fmt.Sprintf("CLA %02X (channel %d", c.Raw, c.Channel)
	if c.SecureMessaging != SMNone {
		s += fmt.Sprintf(", SM %d", c.SecureMessaging)
	}
	if c.IsChained {
		s += ", chained"
	}
	return s + ")"
}
