package emv

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gregLibert/emv-keys/pkg/iso7816"
	"github.com/gregLibert/emv-keys/pkg/tlv"
	"github.com/moov-io/bertlv"
	"github.com/rs/zerolog"
)

// READING FLOW:
// 1. SELECT the payment system environment (PPSE for proximity, PSE for contact).
//    On success, the directory (FCI or the records of the SFI it names) lists candidate AIDs.
// 2. When the directory is missing or none of its AIDs can be read, every known scheme AID is tried.
// 3. For a selected application: GET PROCESSING OPTIONS with the PDOL answered by the Terminal,
//    retried once with an empty PDOL if the card refuses it.
// 4. Every record listed in the AFL (or the fallback scan) is read and mined for the fields
//    needed to rebuild the certificate chain. One readable record is enough to call the
//    application found, but all records are read.

// ErrCommunication reports a transport failure. The card session must be restarted.
var ErrCommunication = errors.New("card communication failure")

// maxDirectoryRecords bounds the scan of the PSE directory SFI.
const maxDirectoryRecords = 16

// Reader extracts a Card record from a payment card.
// A Reader drives a single card session and is not safe for concurrent use.
type Reader struct {
	Client      *iso7816.Client
	Contactless bool
	Terminal    Terminal
	Log         zerolog.Logger
}

// Candidate is an application proposed by the payment system directory.
type Candidate struct {
	AID   []byte
	Label string
}

// NewReader creates a Reader on top of a card transport.
func NewReader(card iso7816.Transmitter, contactless bool, logger zerolog.Logger) *Reader {
	r := &Reader{
		Client:      iso7816.NewClient(card),
		Contactless: contactless,
		Terminal:    DefaultTerminal(),
		Log:         logger,
	}
	r.Client.OnTransaction = r.logTransaction
	return r
}

func (r *Reader) logTransaction(tx iso7816.Transaction) {
	if e := r.Log.Debug(); e.Enabled() {
		raw, _ := tx.Command.Bytes()
		e.Str("c-apdu", tlv.HexBytes(raw).String()).
			Str("r-data", tlv.HexBytes(tx.Response.Data).String()).
			Str("sw", fmt.Sprintf("%04X", uint16(tx.Response.Status))).
			Msg("apdu")
	}
}

// Read runs the whole acquisition flow.
// Only transport failures are errors: they abort the read and wrap ErrCommunication.
// A card without any readable application is returned with Locked set.
func (r *Reader) Read() (*Card, error) {
	card := &Card{}

	found, err := r.readWithDirectory(card)
	if err != nil {
		return nil, err
	}

	if !found {
		r.Log.Debug().Msg("no application read from directory, trying known AIDs")
		found, err = r.readWithKnownAIDs(card)
		if err != nil {
			return nil, err
		}
	}

	card.Locked = !found
	if card.Locked {
		r.Log.Warn().Msg("no payment application could be read")
	}
	return card, nil
}

func (r *Reader) send(cmd *iso7816.CommandAPDU) (iso7816.Trace, error) {
	trace, err := r.Client.Send(cmd)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommunication, err)
	}
	return trace, nil
}

func (r *Reader) readWithDirectory(card *Card) (bool, error) {
	name := PSE
	if r.Contactless {
		name = PPSE
	}

	trace, err := r.send(SelectApplication(name, r.Contactless))
	if err != nil {
		return false, err
	}
	if !trace.IsSuccess() {
		r.Log.Debug().Str("directory", string(name)).Msg("payment system environment not found")
		return false, nil
	}

	directory, err := r.readDirectory(trace.Data())
	if err != nil {
		return false, err
	}

	candidates := ExtractCandidates(directory...)
	r.Log.Debug().Int("count", len(candidates)).Msg("directory candidates")

	for _, c := range candidates {
		found, err := r.readApplication(card, c.AID, c.Label)
		if err != nil || found {
			return found, err
		}
	}
	return false, nil
}

// readDirectory returns the directory entries: those of the records of the SFI
// named by the FCI (PSE), or those carried by the FCI itself (PPSE).
func (r *Reader) readDirectory(selected []byte) ([]ApplicationTemplate, error) {
	fci, err := ParseFCI(selected)
	if err != nil {
		r.Log.Debug().Err(err).Msg("unreadable directory FCI")
		return nil, nil
	}
	r.Log.Trace().Msg(fci.Describe())

	sfi, ok := fci.DirectorySFI()
	if !ok {
		return fci.Entries(), nil
	}

	var entries []ApplicationTemplate
	for rec := byte(1); rec <= maxDirectoryRecords; rec++ {
		trace, err := r.send(ReadRecord(sfi, rec))
		if err != nil {
			return nil, err
		}
		if !trace.IsSuccess() {
			break
		}

		found, err := ParseDirectoryRecord(trace.Data())
		if err != nil {
			r.Log.Debug().Err(err).Uint8("sfi", sfi).Uint8("record", rec).Msg("unreadable directory record")
			continue
		}
		r.Log.Debug().Uint8("sfi", sfi).Uint8("record", rec).Int("entries", len(found)).Msg("directory record")
		entries = append(entries, found...)
	}
	return entries, nil
}

// ExtractCandidates lists the AIDs of directory entries in order. An entry with a
// Kernel Identifier (Tag '9F2A') adds a second candidate made of its own AID
// followed by the identifier. Entries without an AID are skipped.
func ExtractCandidates(entries ...ApplicationTemplate) []Candidate {
	var out []Candidate
	for _, e := range entries {
		if len(e.AID) == 0 {
			continue
		}

		label := strings.TrimSpace(string(e.Label))
		out = append(out, Candidate{AID: append([]byte(nil), e.AID...), Label: label})
		if len(e.KernelID) > 0 {
			aid := append(append([]byte(nil), e.AID...), e.KernelID...)
			out = append(out, Candidate{AID: aid, Label: label})
		}
	}
	return out
}

func (r *Reader) readWithKnownAIDs(card *Card) (bool, error) {
	for _, s := range KnownSchemes {
		for _, aid := range s.AIDs {
			found, err := r.readApplication(card, aid, s.Name)
			if err != nil || found {
				return found, err
			}
		}
	}
	return false, nil
}

// readApplication selects one AID and reads its records.
func (r *Reader) readApplication(card *Card, aid []byte, label string) (bool, error) {
	log := r.Log.With().Str("aid", tlv.HexBytes(aid).String()).Logger()
	log.Debug().Msg("selecting application")

	trace, err := r.send(SelectApplication(aid, r.Contactless))
	if err != nil {
		return false, err
	}
	if !trace.IsSuccess() {
		log.Debug().Str("sw", trace.Status().Verbose()).Msg("application not selected")
		return false, nil
	}
	selected := trace.Data()

	fci, err := ParseFCI(selected)
	if err != nil {
		log.Debug().Err(err).Msg("unreadable FCI")
		fci = &FCI{}
	}
	log.Trace().Msg(fci.Describe())
	if label == "" {
		label = fci.Label()
	}

	gpo, err := r.getProcessingOptions(tlv.Value(selected, "9F38"))
	if err != nil {
		return false, err
	}
	if gpo == nil {
		log.Debug().Msg("processing options refused")
		return false, nil
	}

	found, err := r.readRecords(card, gpo)
	if err != nil || !found {
		return false, err
	}

	card.AID = fci.DFName
	if len(card.AID) == 0 {
		card.AID = aid
	}
	card.Scheme = SchemeName(card.AID)
	if label == "" {
		label = card.Scheme
	}
	card.ApplicationLabel = label
	log.Info().Str("label", label).Str("scheme", card.Scheme).Msg("application read")

	if entry, ok := ParseLogEntry(fci.LogEntry()); ok {
		if card.Transactions, err = r.readTransactionLog(entry); err != nil {
			return false, err
		}
	}

	if card.PinTryCounter, err = r.pinTryCounter(); err != nil {
		return false, err
	}
	return true, nil
}

// getProcessingOptions returns the GPO response data, or nil when the card refuses
// both the PDOL-filled and the empty command.
func (r *Reader) getProcessingOptions(pdol []byte) ([]byte, error) {
	entries, err := tlv.ParseDOL(pdol)
	if err != nil {
		r.Log.Debug().Err(err).Msg("malformed PDOL")
	}

	// The empty command template is the fallback for cards rejecting the PDOL data.
	attempts := [][]byte{r.Terminal.DOLData(entries), nil}

	for _, data := range attempts {
		cmd, err := GetProcessingOptions(data)
		if err != nil {
			return nil, err
		}
		trace, err := r.send(cmd)
		if err != nil {
			return nil, err
		}
		if trace.IsSuccess() {
			return trace.Data(), nil
		}
	}
	return nil, nil
}

// GPOResult is what the GET PROCESSING OPTIONS response tells about the records to read.
type GPOResult struct {
	AFL    []AFLEntry
	Track2 []byte
}

// ParseGPOResponse interprets a GPO response.
//   - Format 1 (Tag '80'): AIP (2 bytes) followed by the AFL.
//   - Format 2 (Tag '77'): AFL in Tag '94', Track 2 equivalent data in Tag '57' or '9F6B'.
//
// The fallback AFL is returned when the response carries none.
func ParseGPOResponse(data []byte) GPOResult {
	var res GPOResult

	if v := tlv.Value(data, "80"); v != nil {
		if len(v) > 2 {
			res.AFL = ParseAFL(v[2:])
		}
	} else {
		res.Track2 = tlv.Value(data, "57", "9F6B")
		res.AFL = ParseAFL(tlv.Value(data, "94"))
	}

	if len(res.AFL) == 0 {
		res.AFL = FallbackAFL()
	}
	return res
}

func (r *Reader) readRecords(card *Card, gpo []byte) (bool, error) {
	res := ParseGPOResponse(gpo)

	found := false
	if len(res.Track2) > 0 && card.applyTrack2(res.Track2) {
		card.setHolderName(tlv.Value(gpo, "5F20"))
		found = true
	}

	for _, entry := range res.AFL {
		for rec := int(entry.FirstRecord); rec <= int(entry.LastRecord); rec++ {
			if rec == 0 {
				continue
			}
			r.Log.Debug().Uint8("sfi", entry.SFI).Int("record", rec).Msg("reading record")

			trace, err := r.send(ReadRecord(entry.SFI, byte(rec)))
			if err != nil {
				return false, err
			}
			if !trace.IsSuccess() {
				continue
			}

			if e := r.Log.Trace(); e.Enabled() {
				if result, err := iso7816.NewResult(trace); err == nil {
					e.Msg(result.Describe())
				}
			}
			card.applyRecord(trace.Data())
			found = true
		}
	}
	return found, nil
}

// applyRecord extracts every field of interest from a record. Each field is
// independent: absent or malformed tags leave the card untouched.
func (c *Card) applyRecord(data []byte) {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return
	}
	value := func(tags ...string) []byte {
		p, ok := tlv.Find(packets, tags...)
		if !ok || len(p.Value) == 0 {
			return nil
		}
		return p.Value
	}
	set := func(dst *tlv.HexBytes, tag string) {
		if v := value(tag); v != nil {
			*dst = v
		}
	}

	c.setHolderName(value("5F20"))

	if v := value("8F"); v != nil {
		idx := v[0]
		c.CAPublicKeyIndex = &idx
	}

	set(&c.IssuerPublicKeyCertificate, "90")
	set(&c.IssuerPublicKeyRemainder, "92")
	set(&c.IssuerPublicKeyExponent, "9F32")

	set(&c.ICCPublicKeyCertificate, "9F46")
	set(&c.ICCPublicKeyRemainder, "9F48")
	set(&c.ICCPublicKeyExponent, "9F47")

	set(&c.PINPublicKeyCertificate, "9F2D")
	set(&c.PINPublicKeyRemainder, "9F2F")
	set(&c.PINPublicKeyExponent, "9F2E")

	if v := value("57", "9F6B"); v != nil {
		c.applyTrack2(v)
	}
	if v := value("5A"); v != nil {
		c.PAN = decodePAN(v)
	}
	if v := value("5F24"); len(v) >= 2 && c.Expiry == "" {
		c.Expiry = tlv.HexBytes(v[:2]).String()
	}
}

func (c *Card) applyTrack2(data []byte) bool {
	t, ok := ParseTrack2(data)
	if !ok {
		return false
	}
	c.PAN = t.PAN
	if t.Expiry != "" {
		c.Expiry = t.Expiry
	}
	return true
}

func (r *Reader) readTransactionLog(entry LogEntry) ([]TransactionRecord, error) {
	trace, err := r.send(GetData(0x9F4F))
	if err != nil {
		return nil, err
	}
	if !trace.IsSuccess() {
		return nil, nil
	}

	format, err := tlv.ParseDOL(tlv.Value(trace.Data(), "9F4F"))
	if err != nil || len(format) == 0 {
		r.Log.Debug().Err(err).Msg("unusable log format")
		return nil, nil
	}

	var records []TransactionRecord
	for rec := 1; rec <= int(entry.Records); rec++ {
		trace, err := r.send(ReadRecord(entry.SFI, byte(rec)))
		if err != nil {
			return nil, err
		}
		if !trace.IsSuccess() {
			break
		}

		t := ParseTransactionRecord(trace.Data(), format)
		if t.AmountValue() <= 0 {
			continue
		}
		records = append(records, t)
	}
	return records, nil
}

func (r *Reader) pinTryCounter() (*int, error) {
	trace, err := r.send(GetData(0x9F17))
	if err != nil {
		return nil, err
	}
	if !trace.IsSuccess() {
		return nil, nil
	}

	v := tlv.Value(trace.Data(), "9F17")
	if len(v) == 0 {
		return nil, nil
	}
	n := 0
	for _, b := range v {
		n = n<<8 | int(b)
	}
	return &n, nil
}
