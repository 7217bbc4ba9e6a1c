package emv

import (
	"fmt"

	"github.com/gregLibert/emv-keys/pkg/iso7816"
	"github.com/moov-io/bertlv"
)

// EMV COMMANDS (EMV Book 3, section 6.5):
// EMV reuses the interindustry SELECT and READ RECORD commands (CLA '00') and adds
// proprietary commands under CLA '80', among them GET PROCESSING OPTIONS (INS 'A8')
// and the EMV flavour of GET DATA (INS 'CA').

// Directory names of the payment system environments.
var (
	PSE  = []byte("1PAY.SYS.DDF01") // contact
	PPSE = []byte("2PAY.SYS.DDF01") // proximity
)

// INS_GET_PROCESSING_OPTIONS is the EMV-proprietary GPO instruction.
const INS_GET_PROCESSING_OPTIONS iso7816.InsCode = 0xA8

func init() {
	iso7816.RegisterInstruction(INS_GET_PROCESSING_OPTIONS, "GET PROCESSING OPTIONS")
}

var (
	interindustry, _ = iso7816.NewClass(0x00)
	proprietary, _   = iso7816.NewClass(0x80)
)

// SelectApplication builds a SELECT by DF name.
// Proximity cards expect Le to be present, contact cards (T=0) must not get it
// and answer with '61 XX' instead.
func SelectApplication(name []byte, contactless bool) *iso7816.CommandAPDU {
	cmd := iso7816.SelectByAID(interindustry, name)
	if contactless {
		cmd.Ne = iso7816.MaxShortLe
	}
	return cmd
}

// GetProcessingOptions builds the GPO command. pdolData is wrapped in the
// Command Template (Tag '83'); an empty pdolData yields '83 00'.
func GetProcessingOptions(pdolData []byte) (*iso7816.CommandAPDU, error) {
	data, err := bertlv.Encode([]bertlv.TLV{{Tag: "83", Value: pdolData}})
	if err != nil {
		return nil, fmt.Errorf("encoding command template: %w", err)
	}

	ins, _ := iso7816.NewInstruction(INS_GET_PROCESSING_OPTIONS)
	return iso7816.NewCommandAPDU(proprietary, ins, 0x00, 0x00, data, iso7816.MaxShortLe), nil
}

// ReadRecord builds a READ RECORD of one record of an SFI.
func ReadRecord(sfi, record byte) *iso7816.CommandAPDU {
	return iso7816.ReadRecord(interindustry, sfi, record)
}

// GetData builds the EMV GET DATA command for a two-byte tag (e.g. '9F17').
func GetData(tag uint16) *iso7816.CommandAPDU {
	return iso7816.GetData(proprietary, tag)
}
