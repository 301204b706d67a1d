package hl7_test

import (
	"testing"

	"claimbridge/internal/hl7"
)

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"compact token unchanged", "19800201", "19800201"},
		{"slash separated", "2/1/1980", "19800201"},
		{"dash separated", "2-1-1980", "19800201"},
		{"two digit month and day", "12/31/2024", "20241231"},
		{"zero padding applied", "3/4/2024", "20240304"},
		{"empty input", "", ""},
		{"free text", "next tuesday", ""},
		{"two digit year rejected", "2/1/80", ""},
		{"nine digits rejected", "198002011", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := hl7.NormalizeDate(tc.in)
			if got != tc.want {
				t.Fatalf("NormalizeDate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeDateIdempotent(t *testing.T) {
	inputs := []string{"19800201", "2/1/1980", "garbage", "", "12-31-1999"}
	for _, in := range inputs {
		once := hl7.NormalizeDate(in)
		twice := hl7.NormalizeDate(once)
		if once != twice {
			t.Fatalf("NormalizeDate not idempotent for %q: first %q, second %q", in, once, twice)
		}
	}
}
