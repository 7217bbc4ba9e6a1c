package emv

import "github.com/gregLibert/emv-keys/pkg/bits"

// APPLICATION FILE LOCATOR (Tag '94'):
// A list of 4-byte entries, each describing a range of records to read:
//   Byte 1: SFI in bits 8-4 (bits 3-1 are RFU).
//   Byte 2: First record number.
//   Byte 3: Last record number.
//   Byte 4: Number of records (from the first) involved in offline data authentication.

// AFLEntry is one (SFI, record range) element of an Application File Locator.
type AFLEntry struct {
	SFI                byte
	FirstRecord        byte
	LastRecord         byte
	OfflineAuthRecords byte
}

// IsOfflineAuth reports whether the range holds records signed for offline data authentication.
func (e AFLEntry) IsOfflineAuth() bool {
	return e.OfflineAuthRecords > 0
}

// ParseAFL splits the AFL value into entries. A trailing incomplete entry is ignored.
func ParseAFL(data []byte) []AFLEntry {
	var entries []AFLEntry
	for i := 0; i+4 <= len(data); i += 4 {
		entries = append(entries, AFLEntry{
			SFI:                bits.GetRange(data[i], 8, 4),
			FirstRecord:        data[i+1],
			LastRecord:         data[i+2],
			OfflineAuthRecords: data[i+3],
		})
	}
	return entries
}

// Fallback scan used when the card provides no AFL.
// Nearly every card keeps its public data in the first few SFIs.
const (
	fallbackSFICount   = 7
	fallbackRecordSpan = 5
)

// FallbackAFL synthesizes the scan used when the card provides no AFL:
// SFIs 1 to 7, records 1 to 5 each.
func FallbackAFL() []AFLEntry {
	entries := make([]AFLEntry, 0, fallbackSFICount)
	for sfi := byte(1); sfi <= fallbackSFICount; sfi++ {
		entries = append(entries, AFLEntry{SFI: sfi, FirstRecord: 1, LastRecord: fallbackRecordSpan})
	}
	return entries
}
