package models

import (
	"errors"
	"testing"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCents int64
		wantErr   bool
	}{
		{name: "dot separator", input: "12.34", wantCents: 1234},
		{name: "comma separator", input: "12,34", wantCents: 1234},
		{name: "integer", input: "7", wantCents: 700},
		{name: "zero allowed", input: "0", wantCents: 0},
		{name: "single fractional digit", input: "3.5", wantCents: 350},
		{name: "third decimal rounds down", input: "12.344", wantCents: 1234},
		{name: "third decimal rounds half up", input: "12.345", wantCents: 1235},
		{name: "leading dot", input: ".99", wantCents: 99},
		{name: "trailing dot", input: "5.", wantCents: 500},
		{name: "zero with trailing dot", input: "0.", wantCents: 0},
		{name: "surrounding whitespace", input: "  4.20  ", wantCents: 420},
		{name: "empty", input: "", wantErr: true},
		{name: "negative rejected", input: "-1.00", wantErr: true},
		{name: "explicit plus rejected", input: "+1.00", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "two separators", input: "1.2.3", wantErr: true},
		{name: "lone dot", input: ".", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrValidation) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrValidation", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) failed: %v", tt.input, err)
			}
			if got.Cents != tt.wantCents {
				t.Errorf("ParseAmount(%q) = %d cents, want %d", tt.input, got.Cents, tt.wantCents)
			}
		})
	}
}

func TestMoneyString(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{350, "3.50"},
		{0, "0.00"},
		{5, "0.05"},
		{123456, "1234.56"},
		{-350, "-3.50"},
	}
	for _, tt := range tests {
		if got := (Money{Cents: tt.cents}).String(); got != tt.want {
			t.Errorf("Money{%d}.String() = %q, want %q", tt.cents, got, tt.want)
		}
	}
}
