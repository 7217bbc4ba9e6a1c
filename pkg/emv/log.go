package emv

import (
	"encoding/hex"
	"strconv"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// TRANSACTION LOG (EMV Book 3, Annex D):
// The Log Entry (Tag '9F4D', or 'DF60' on Visa) found in the application FCI gives
// the SFI of the log file (byte 1) and its number of records (byte 2).
// The Log Format (Tag '9F4F', read with GET DATA) is a DOL describing each record:
// records are the plain concatenation of the listed values, without tags.

// LogEntry locates the transaction log file.
type LogEntry struct {
	SFI     byte
	Records byte
}

// ParseLogEntry decodes the 2-byte Log Entry value.
func ParseLogEntry(data []byte) (LogEntry, bool) {
	if len(data) < 2 || data[0] == 0 {
		return LogEntry{}, false
	}
	return LogEntry{SFI: data[0], Records: data[1]}, true
}

// TransactionRecord is one entry of the transaction log.
type TransactionRecord struct {
	Amount          tlv.HexBytes `tlv:"9F02" json:"amount,omitempty"`
	CurrencyCode    tlv.HexBytes `tlv:"5F2A" json:"currencyCode,omitempty"`
	Date            tlv.HexBytes `tlv:"9A" json:"date,omitempty"`
	Time            tlv.HexBytes `tlv:"9F21" json:"time,omitempty"`
	CountryCode     tlv.HexBytes `tlv:"9F1A" json:"countryCode,omitempty"`
	TransactionType tlv.HexBytes `tlv:"9C" json:"type,omitempty"`
	MerchantName    tlv.HexBytes `tlv:"9F4E" fmt:"ascii" json:"merchantName,omitempty"`
	ATC             tlv.HexBytes `tlv:"9F36" json:"atc,omitempty"`

	// Values holds every field of the record keyed by tag, including the ones above.
	Values map[string]tlv.HexBytes `json:"values,omitempty"`
}

// visaAmountOffset is added to the logged amount by some Visa cards.
const visaAmountOffset = 1500000000

// ParseTransactionRecord splits a raw log record following the log format.
func ParseTransactionRecord(data []byte, format []tlv.DOLEntry) TransactionRecord {
	rec := TransactionRecord{Values: make(map[string]tlv.HexBytes, len(format))}

	offset := 0
	for _, e := range format {
		if offset+e.Length > len(data) {
			break
		}
		val := tlv.HexBytes(data[offset : offset+e.Length])
		offset += e.Length

		rec.Values[e.Tag] = val
		switch e.Tag {
		case "9F02":
			rec.Amount = val
		case "5F2A":
			rec.CurrencyCode = val
		case "9A":
			rec.Date = val
		case "9F21":
			rec.Time = val
		case "9F1A":
			rec.CountryCode = val
		case "9C":
			rec.TransactionType = val
		case "9F4E":
			rec.MerchantName = val
		case "9F36":
			rec.ATC = val
		}
	}
	return rec
}

// AmountValue decodes the BCD amount in minor units.
// It returns -1 when the record carries no valid amount.
func (r TransactionRecord) AmountValue() int64 {
	if len(r.Amount) == 0 {
		return -1
	}
	v, err := strconv.ParseInt(hex.EncodeToString(r.Amount), 10, 64)
	if err != nil {
		return -1
	}
	if v >= visaAmountOffset {
		v -= visaAmountOffset
	}
	return v
}
