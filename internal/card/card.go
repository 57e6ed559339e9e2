// Package card validates and formats credit card input. All functions are
// pure so they can be re-run on every keystroke and unit-tested without
// any surrounding state.
package card

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minNumberLen = 12
	maxNumberLen = 19
)

// Field names used as keys in the per-field error map.
const (
	FieldNumber = "number"
	FieldName   = "name"
	FieldExpiry = "expiry"
	FieldCVC    = "cvc"
)

var (
	expiryPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvcPattern    = regexp.MustCompile(`^\d{3,4}$`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// Input is the raw user-entered card data.
type Input struct {
	Number string
	Name   string
	Expiry string
	CVC    string
}

// Result carries the aggregate validity and a human-readable message per
// invalid field. A field absent from Errors is valid.
type Result struct {
	Valid  bool
	Errors map[string]string
}

// Validate checks all four card fields against now. It is stateless:
// given the same input and clock it always returns the same result.
func Validate(in Input, now time.Time) Result {
	errs := make(map[string]string)

	if msg := validateNumber(in.Number); msg != "" {
		errs[FieldNumber] = msg
	}
	if len(strings.TrimSpace(in.Name)) < 3 {
		errs[FieldName] = "cardholder name must be at least 3 characters"
	}
	if msg := validateExpiry(in.Expiry, now); msg != "" {
		errs[FieldExpiry] = msg
	}
	if !cvcPattern.MatchString(in.CVC) {
		errs[FieldCVC] = "security code must be 3 or 4 digits"
	}

	return Result{Valid: len(errs) == 0, Errors: errs}
}

func validateNumber(raw string) string {
	digits := Digits(raw)
	if len(digits) < minNumberLen || len(digits) > maxNumberLen {
		return "card number must be 12 to 19 digits"
	}
	if !luhnValid(digits) {
		return "card number is not valid"
	}
	return ""
}

func validateExpiry(raw string, now time.Time) string {
	m := expiryPattern.FindStringSubmatch(raw)
	if m == nil {
		return "expiry must be in MM/YY format"
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	// A card expiring this month is still accepted until the first day
	// of the following month. Comparison is at calendar-month
	// granularity, never exact days.
	boundary := time.Date(2000+year, time.Month(month)+1, 1, 0, 0, 0, 0, now.Location())
	if !boundary.After(now) {
		return "card has expired"
	}
	return ""
}

// luhnValid runs the mod-10 checksum: double every second digit counting
// from the rightmost, subtract 9 when the double exceeds 9, and require
// the sum to be divisible by 10.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// Digits strips everything but digits from s.
func Digits(s string) string {
	return nonDigits.ReplaceAllString(s, "")
}

// FormatNumber groups the digits of a card number in runs of four
// separated by single spaces, regardless of validity. Formatting an
// already-formatted number yields the same string.
func FormatNumber(s string) string {
	digits := Digits(s)
	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := i + 4
		if end > len(digits) {
			end = len(digits)
		}
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// LastFour returns the final four digits of a card number, or the empty
// string when fewer than four digits were entered.
func LastFour(s string) string {
	digits := Digits(s)
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
