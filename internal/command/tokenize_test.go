package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{`RPM 6000`, []string{"RPM", "6000"}},
		{`  TIRE "Driver Front" 32.0  `, []string{"TIRE", "Driver Front", "32.0"}},
		{`TIRE 'Passenger Rear' 30`, []string{"TIRE", "Passenger Rear", "30"}},
		{"HAZARDS\r\n", []string{"HAZARDS"}},
		{"", nil},
		{"# comment", nil},
	}
	for _, tt := range tests {
		got, err := Tokenize(tt.line)
		if err != nil {
			t.Fatalf("Tokenize(%q): %v", tt.line, err)
		}
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Tokenize(%q) (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestTokenizeUnterminatedQuote(t *testing.T) {
	if _, err := Tokenize(`TIRE "Driver Front 32`); err == nil {
		t.Error("expected error for unterminated quote")
	}
}
