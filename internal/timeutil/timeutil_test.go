package timeutil_test

import (
	"testing"

	"github.com/adetunwase/pomodoro/internal/timeutil"
)

func TestFormatTime(t *testing.T) {
	cases := []struct {
		name string
		ms   int64
		want string
	}{
		{"zero", 0, "00:00"},
		{"sub-second remainder floors", 999, "00:00"},
		{"one second", 1000, "00:01"},
		{"padded seconds", 59000, "00:59"},
		{"exact minute", 60000, "01:00"},
		{"default focus duration", 25 * 60 * 1000, "25:00"},
		{"minutes not wrapped at sixty", 90 * 60 * 1000, "90:00"},
		{"negative clamps to zero", -5000, "00:00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := timeutil.FormatTime(tc.ms)
			if got != tc.want {
				t.Fatalf("FormatTime(%d) = %q, want %q", tc.ms, got, tc.want)
			}
		})
	}
}

func TestParseInt(t *testing.T) {
	cases := []struct {
		name string
		in   string
		def  int
		want int
	}{
		{"plain number", "42", 0, 42},
		{"whitespace tolerated", " 7 ", 0, 7},
		{"negative", "-3", 0, -3},
		{"empty falls back", "", 30, 30},
		{"garbage falls back", "abc", 25, 25},
		{"trailing junk falls back", "12x", 5, 5},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := timeutil.ParseInt(tc.in, tc.def)
			if got != tc.want {
				t.Fatalf("ParseInt(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.want)
			}
		})
	}
}
