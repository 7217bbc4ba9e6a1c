package iso7816

import (
	"testing"
)

func TestStatusWord(t *testing.T) {
	tests := []struct {
		sw      StatusWord
		success bool
		counter int
		verbose string
	}{
		{SW_NO_ERROR, true, -1, "[9000] success"},
		{0x6112, true, -1, "[6112] 18 more bytes available"},
		{0x6C1C, false, -1, "[6C1C] wrong Le, expected 28"},
		{0x63C2, false, 2, "[63C2] counter = 2"},
		{SW_WARN_COUNTER_0, false, 0, "[63C0] counter = 0"},
		{SW_ERR_FILE_NOT_FOUND, false, -1, "[6A82] file or application not found"},
		{SW_ERR_RECORD_NOT_FOUND, false, -1, "[6A83] record not found"},
		{0x6285, false, -1, "[6285] warning"},
		{0x6581, false, -1, "[6581] execution error"},
		{0x6A84, false, -1, "[6A84] checking error"},
		{0x9F10, false, -1, "[9F10] unknown status"},
	}

	for _, tt := range tests {
		if got := tt.sw.IsSuccess(); got != tt.success {
			t.Errorf("%04X IsSuccess = %v, want %v", uint16(tt.sw), got, tt.success)
		}
		if got := tt.sw.Counter(); got != tt.counter {
			t.Errorf("%04X Counter = %d, want %d", uint16(tt.sw), got, tt.counter)
		}
		if got := tt.sw.Verbose(); got != tt.verbose {
			t.Errorf("%04X Verbose = %q, want %q", uint16(tt.sw), got, tt.verbose)
		}
	}
}

func TestStatusWord_Bytes(t *testing.T) {
	sw := NewStatusWord(0x6A, 0x82)
	if sw != SW_ERR_FILE_NOT_FOUND || sw.SW1() != 0x6A || sw.SW2() != 0x82 {
		t.Errorf("unexpected status word %04X", uint16(sw))
	}
	if sw.String() != "file or application not found" || StatusWord(0x6A84).String() != "6A84" {
		t.Errorf("unexpected names %q, %q", sw, StatusWord(0x6A84))
	}
}
