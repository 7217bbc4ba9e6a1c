package emv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// SELECT RESPONSE (EMV Book 1, section 11.3.4):
//
//	6F  FCI Template
//	    84  DF Name (AID, or the PSE/PPSE directory name)
//	    A5  FCI Proprietary Template
//	        88    SFI of the directory file (PSE only)
//	        50    Application Label
//	        9F38  PDOL
//	        BF0C  FCI Issuer Discretionary Data
//	              9F4D / DF60  Log Entry
//	              61           Directory Entry (PPSE only)
//
// PSE directory records are Record Templates ('70') holding the same '61' entries.

// ErrNotTemplate is returned when the data does not start with the expected template.
var ErrNotTemplate = errors.New("missing template")

// FCI is the answer to a SELECT by name.
type FCI struct {
	DFName      []byte         `tlv:"84"`
	Proprietary FCIProprietary `tlv:"A5"`
}

type FCIProprietary struct {
	Label         []byte `tlv:"50" fmt:"ascii"`
	Priority      []byte `tlv:"87" fmt:"int"`
	DirectorySFI  []byte `tlv:"88" fmt:"int"`
	PDOL          []byte `tlv:"9F38"`
	Language      []byte `tlv:"5F2D" fmt:"ascii"`
	CodeTable     []byte `tlv:"9F11" fmt:"int"`
	PreferredName []byte `tlv:"9F12" fmt:"ascii"`

	Discretionary *FCIDiscretionary `tlv:"BF0C"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

type FCIDiscretionary struct {
	LogEntry     []byte                `tlv:"9F4D"`
	VisaLogEntry []byte                `tlv:"DF60"`
	Entries      []ApplicationTemplate `tlv:"61"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// ApplicationTemplate is one directory entry (Tag '61').
type ApplicationTemplate struct {
	AID           []byte `tlv:"4F"`
	Label         []byte `tlv:"50" fmt:"ascii"`
	Priority      []byte `tlv:"87" fmt:"int"`
	PreferredName []byte `tlv:"9F12" fmt:"ascii"`
	KernelID      []byte `tlv:"9F2A"`

	Unknown []bertlv.TLV `tlv:",unknown"`
}

// ParseFCI decodes a SELECT response. The '6F' wrapper is optional.
func ParseFCI(data []byte) (*FCI, error) {
	packets, err := decodeTemplate(data, "6F", false)
	if err != nil {
		return nil, err
	}

	fci := &FCI{}
	if err := tlv.UnmarshalFromPackets(packets, fci); err != nil {
		return nil, fmt.Errorf("mapping FCI: %w", err)
	}
	return fci, nil
}

// ParseDirectoryRecord decodes one record of the PSE directory file.
func ParseDirectoryRecord(data []byte) ([]ApplicationTemplate, error) {
	packets, err := decodeTemplate(data, "70", true)
	if err != nil {
		return nil, err
	}

	var rec struct {
		Entries []ApplicationTemplate `tlv:"61"`
	}
	if err := tlv.UnmarshalFromPackets(packets, &rec); err != nil {
		return nil, fmt.Errorf("mapping directory record: %w", err)
	}
	return rec.Entries, nil
}

// decodeTemplate returns the content of the outer template, or the top level
// objects when the template is optional and absent.
func decodeTemplate(data []byte, tag string, required bool) ([]bertlv.TLV, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w %s: no data", ErrNotTemplate, tag)
	}

	packets, err := bertlv.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decoding BER-TLV: %w", err)
	}
	if len(packets) == 0 {
		return nil, fmt.Errorf("%w %s: no data object", ErrNotTemplate, tag)
	}

	if strings.EqualFold(packets[0].Tag, tag) {
		return packets[0].TLVs, nil
	}
	if required {
		return nil, fmt.Errorf("%w %s", ErrNotTemplate, tag)
	}
	return packets, nil
}

// Label returns the application label, falling back to the preferred name.
func (f *FCI) Label() string {
	if len(f.Proprietary.Label) > 0 {
		return strings.TrimSpace(string(f.Proprietary.Label))
	}
	return strings.TrimSpace(tlv.MakeSafeASCII(f.Proprietary.PreferredName))
}

// DirectorySFI returns the SFI of the PSE directory file, if the FCI names one.
func (f *FCI) DirectorySFI() (byte, bool) {
	if len(f.Proprietary.DirectorySFI) != 1 || f.Proprietary.DirectorySFI[0] == 0 {
		return 0, false
	}
	return f.Proprietary.DirectorySFI[0], true
}

// LogEntry returns the Log Entry value, Visa's 'DF60' counting as '9F4D'.
func (f *FCI) LogEntry() []byte {
	d := f.Proprietary.Discretionary
	if d == nil {
		return nil
	}
	if len(d.LogEntry) > 0 {
		return d.LogEntry
	}
	return d.VisaLogEntry
}

// Entries returns the directory entries carried by a PPSE answer.
func (f *FCI) Entries() []ApplicationTemplate {
	if f.Proprietary.Discretionary == nil {
		return nil
	}
	return f.Proprietary.Discretionary.Entries
}

// Describe renders the FCI for trace logs.
func (f *FCI) Describe() string {
	var sb strings.Builder
	sb.WriteString("=== EMV FCI ===")

	if len(f.DFName) > 0 {
		sb.WriteString(fmt.Sprintf("\n    - DFName (84): %s", tlv.HexBytes(f.DFName)))
	}
	tlv.WriteStructFields(&sb, "Proprietary", f.Proprietary)
	if d := f.Proprietary.Discretionary; d != nil {
		tlv.WriteStructFields(&sb, "Discretionary", d)
		for i, e := range d.Entries {
			tlv.WriteStructFields(&sb, fmt.Sprintf("Entry[%d]", i+1), e)
		}
	}

	return sb.String()
}
