package pcsc

import (
	"errors"
	"testing"
)

func TestPickReader(t *testing.T) {
	readers := []string{
		"ACS ACR122U PICC Interface 00 00",
		"Identiv uTrust 3700 F Contactless Reader 01 00",
	}

	tests := []struct {
		name     string
		readers  []string
		selector string
		want     string
		wantErr  bool
	}{
		{name: "Default first", readers: readers, want: readers[0]},
		{name: "By index", readers: readers, selector: "1", want: readers[1]},
		{name: "By name", readers: readers, selector: "utrust", want: readers[1]},
		{name: "Index out of range", readers: readers, selector: "2", wantErr: true},
		{name: "Negative index", readers: readers, selector: "-1", wantErr: true},
		{name: "No match", readers: readers, selector: "omnikey", wantErr: true},
		{name: "No readers", readers: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PickReader(tt.readers, tt.selector)
			if tt.wantErr {
				if !errors.Is(err, ErrNoReader) {
					t.Fatalf("expected ErrNoReader, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSession_TransmitAfterClose(t *testing.T) {
	s := &Session{Reader: "test"}
	if err := s.Close(); err != nil {
		t.Fatalf("closing an empty session: %v", err)
	}
	if _, err := s.Transmit([]byte{0x00, 0xA4, 0x04, 0x00}); err == nil {
		t.Fatal("expected an error after Close")
	}
}
