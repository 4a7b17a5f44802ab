package phone

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "one digit", input: "1", want: "1"},
		{name: "two digits", input: "11", want: "11"},
		{name: "three digits", input: "119", want: "(11) 9"},
		{name: "seven digits", input: "1191234", want: "(11) 91234"},
		{name: "eight digits", input: "11912345", want: "(11) 91234-5"},
		{name: "eleven digits", input: "11912345678", want: "(11) 91234-5678"},
		{name: "truncates past eleven", input: "119123456789999", want: "(11) 91234-5678"},
		{name: "strips punctuation", input: "(11) 9 1234-5678", want: "(11) 91234-5678"},
		{name: "strips letters", input: "a1b1c9", want: "(11) 9"},
		{name: "already formatted", input: "(11) 91234-5678", want: "(11) 91234-5678"},
		{name: "non-ascii digits ignored", input: "１１9", want: "9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Format(tt.input))
		})
	}
}

func TestValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"(11) 91234-5678", true},
		{"(99) 90000-0000", true},
		{"(11) 1234-5678", false},
		{"11 91234-5678", false},
		{"(11) 91234567", false},
		{"(11) 81234-5678", false},
		{"(11)91234-5678", false},
		{"(11) 91234-5678 ", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.want, Valid(tt.input))
		})
	}
}

func TestFormat_ShortDigitsUnchanged_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		digits := rapid.StringMatching(`[0-9]{0,2}`).Draw(rt, "digits")
		require.Equal(rt, digits, Format(digits))
	})
}

func TestFormat_MediumDigits_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		digits := rapid.StringMatching(`[0-9]{3,7}`).Draw(rt, "digits")
		require.Equal(rt, "("+digits[:2]+") "+digits[2:], Format(digits))
	})
}

func TestFormat_LongDigits_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		digits := rapid.StringMatching(`[0-9]{8,11}`).Draw(rt, "digits")
		got := Format(digits)
		require.Equal(rt, "("+digits[:2]+") "+digits[2:7]+"-"+digits[7:], got)
		require.Equal(rt, digits, Digits(got))
	})
}

func TestFormat_Idempotent_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.String().Draw(rt, "input")
		once := Format(input)
		require.Equal(rt, once, Format(once))
	})
}

func TestFormat_ValidRoundTrip_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		area := rapid.StringMatching(`[0-9]{2}`).Draw(rt, "area")
		rest := rapid.StringMatching(`[0-9]{8}`).Draw(rt, "rest")
		formatted := Format(area + "9" + rest)
		require.True(rt, Valid(formatted), "formatted %q should be valid", formatted)
	})
}
