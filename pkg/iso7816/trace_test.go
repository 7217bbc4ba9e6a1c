package iso7816

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gregLibert/emv-keys/pkg/tlv"
)

func tx(cmd *CommandAPDU, raw string) Transaction {
	resp, err := ParseResponseAPDU(tlv.Hex(raw))
	if err != nil {
		panic(err)
	}
	return Transaction{Command: cmd, Response: resp}
}

func TestTrace(t *testing.T) {
	cls, _ := NewClass(0x00)
	read := ReadRecord(cls, 1, 1)
	getResp := GetResponse(cls, 4)

	tests := []struct {
		name    string
		trace   Trace
		success bool
		status  StatusWord
		data    []byte
	}{
		{name: "empty"},
		{
			name:    "single exchange",
			trace:   Trace{tx(read, "70 02 5A 00 90 00")},
			success: true,
			status:  SW_NO_ERROR,
			data:    tlv.Hex("70 02 5A 00"),
		},
		{
			name:   "error",
			trace:  Trace{tx(read, "6A 83")},
			status: SW_ERR_RECORD_NOT_FOUND,
		},
		{
			name:    "chained GET RESPONSE",
			trace:   Trace{tx(read, "61 04"), tx(getResp, "70 02 61 02"), tx(getResp, "5A 00 90 00")},
			success: true,
			status:  SW_NO_ERROR,
			data:    tlv.Hex("70 02 5A 00"),
		},
		{
			name:    "corrected Le replaces first answer",
			trace:   Trace{tx(read, "6C 04"), tx(read, "70 02 5A 00 90 00")},
			success: true,
			status:  SW_NO_ERROR,
			data:    tlv.Hex("70 02 5A 00"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.trace.IsSuccess(); got != tt.success {
				t.Errorf("IsSuccess = %v, want %v", got, tt.success)
			}
			if got := tt.trace.Status(); got != tt.status {
				t.Errorf("Status = %04X, want %04X", uint16(got), uint16(tt.status))
			}
			if diff := cmp.Diff(tt.data, tt.trace.Data()); diff != "" {
				t.Errorf("Data mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResult_Describe(t *testing.T) {
	cls, _ := NewClass(0x00)
	read := ReadRecord(cls, 2, 1)
	trace := Trace{
		tx(read, "61 0C"),
		tx(GetResponse(cls, 12), "70 0A 5F 20 07 4A 2E 20 44 4F 45 20 90 00"),
	}

	result, err := NewResult(trace)
	if err != nil {
		t.Fatalf("NewResult failed: %v", err)
	}

	want := []string{
		"=== READ RECORD REPORT ===",
		"    - Command: READ RECORD P1=01 P2=14 Lc=0 Le=256",
		"    - SFI: 2, Record: 1",
		"    - Exchanges: 2",
		"      READ RECORD -> [610C] 12 more bytes available",
		"      GET RESPONSE -> [9000] success",
		"    - Status: [9000] success",
		"    - Data:",
		"      70:",
		`        5F20: 4A2E20444F4520 ("J. DOE ")`,
	}
	if diff := cmp.Diff(want, strings.Split(result.Describe(), "\n")); diff != "" {
		t.Errorf("Describe mismatch (-want +got):\n%s", diff)
	}

	if _, err := NewResult(nil); err == nil {
		t.Error("expected an error for an empty trace")
	}
}
