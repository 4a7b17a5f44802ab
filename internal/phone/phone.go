// Package phone formats and validates Brazilian mobile numbers as typed into
// the registration form.
package phone

import (
	"regexp"
	"strings"
)

// MaxDigits is the length of a mobile number including the two-digit area code.
const MaxDigits = 11

// InvalidMessage is shown when a number does not match Pattern.
const InvalidMessage = "Número inválido. Use o formato (XX) 9XXXX-XXXX, incluindo o DDD."

// Pattern is the only accepted shape: (DD) 9NNNN-NNNN.
var Pattern = regexp.MustCompile(`^\(\d{2}\) 9\d{4}-\d{4}$`)

// Digits returns the ASCII digits of value, truncated to MaxDigits.
func Digits(value string) string {
	var b strings.Builder
	for i := 0; i < len(value) && b.Len() < MaxDigits; i++ {
		if c := value[i]; c >= '0' && c <= '9' {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Format renders value in display form. It is applied on every keystroke and is
// idempotent: digits are re-extracted before formatting.
//
//	"11"          -> "11"
//	"11912"       -> "(11) 912"
//	"11912345678" -> "(11) 91234-5678"
func Format(value string) string {
	digits := Digits(value)
	switch {
	case len(digits) < 3:
		return digits
	case len(digits) <= 7:
		return "(" + digits[:2] + ") " + digits[2:]
	default:
		return "(" + digits[:2] + ") " + digits[2:7] + "-" + digits[7:]
	}
}

// Valid reports whether value is a complete mobile number in display form.
func Valid(value string) bool {
	return Pattern.MatchString(value)
}
