package iso7816

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

// Result is a decoded view of a completed request, used for trace logging.
type Result struct {
	Trace Trace

	Name   string
	Status StatusWord
	Data   []byte

	// Objects holds the response data decoded as BER-TLV.
	// It stays empty when the data is not TLV-encoded.
	Objects []bertlv.TLV
}

// NewResult decodes the outcome of a trace.
func NewResult(trace Trace) (*Result, error) {
	req := trace.Request()
	if req == nil || trace.Last().Response == nil {
		return nil, fmt.Errorf("empty trace")
	}

	r := &Result{
		Trace:  trace,
		Name:   req.Instruction.Raw.String(),
		Status: trace.Status(),
		Data:   trace.Data(),
	}

	if len(r.Data) > 0 {
		if objects, err := bertlv.Decode(r.Data); err == nil {
			r.Objects = objects
		}
	}

	return r, nil
}

// Describe renders the request, its exchanges and the decoded response.
func (r *Result) Describe() string {
	req := r.Trace.Request()

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("=== %s REPORT ===", r.Name))
	sb.WriteString(fmt.Sprintf("\n    - Command: %s", req))
	switch req.Instruction.Raw {
	case INS_SELECT:
		sb.WriteString(fmt.Sprintf("\n    - Name: %s", tlv.HexBytes(req.Data)))
	case INS_READ_RECORD:
		sb.WriteString(fmt.Sprintf("\n    - SFI: %d, Record: %d", req.P2>>3, req.P1))
	case INS_GET_DATA:
		sb.WriteString(fmt.Sprintf("\n    - Tag: %02X%02X", req.P1, req.P2))
	}

	if len(r.Trace) > 1 {
		sb.WriteString(fmt.Sprintf("\n    - Exchanges: %d", len(r.Trace)))
		for _, tx := range r.Trace {
			sb.WriteString(fmt.Sprintf("\n      %s -> %s", tx.Command.Instruction.Raw, tx.Response.Status.Verbose()))
		}
	}
	sb.WriteString(fmt.Sprintf("\n    - Status: %s", r.Status.Verbose()))

	switch {
	case len(r.Objects) > 0:
		var tree strings.Builder
		tlv.WriteTree(&tree, r.Objects, 6)
		sb.WriteString("\n    - Data:\n")
		sb.WriteString(tree.String())
	case len(r.Data) > 0:
		sb.WriteString(fmt.Sprintf("\n    - Data: %s", tlv.HexBytes(r.Data)))
	}

	return sb.String()
}
