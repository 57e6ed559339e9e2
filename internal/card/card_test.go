package card

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Number: "4111111111111111",
		Name:   "Jane Doe",
		Expiry: "12/30",
		CVC:    "123",
	}
}

func TestValidate_AllFieldsValid(t *testing.T) {
	now := time.Date(2024, time.December, 15, 12, 0, 0, 0, time.UTC)

	result := Validate(validInput(), now)

	require.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidate_LuhnChecksum(t *testing.T) {
	now := time.Date(2024, time.December, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		number string
		valid  bool
	}{
		{"known valid visa", "4111111111111111", true},
		{"checksum off by one", "4111111111111112", false},
		{"valid with spaces", "4111 1111 1111 1111", true},
		{"too short regardless of digits", "41111111111", false},
		{"twelve digit minimum", "411111111111", false}, // fails checksum, length ok
		{"nineteen digits valid", "4111111111111111110", true},
		{"twenty digits rejected", "41111111111111111107", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			in.Number = tt.number
			result := Validate(in, now)
			if tt.valid {
				assert.NotContains(t, result.Errors, FieldNumber)
			} else {
				assert.Contains(t, result.Errors, FieldNumber)
			}
		})
	}
}

func TestValidate_Name(t *testing.T) {
	now := time.Date(2024, time.December, 15, 12, 0, 0, 0, time.UTC)

	in := validInput()
	in.Name = "  ab  "
	result := Validate(in, now)
	assert.Contains(t, result.Errors, FieldName)
	assert.False(t, result.Valid)

	in.Name = "abc"
	result = Validate(in, now)
	assert.NotContains(t, result.Errors, FieldName)
}

func TestValidate_Expiry(t *testing.T) {
	dec2024 := time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)
	feb2025 := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	in := validInput()
	in.Expiry = "01/25"

	// Not expired when checked in Dec 2024.
	result := Validate(in, dec2024)
	assert.NotContains(t, result.Errors, FieldExpiry)

	// Expired when checked in Feb 2025.
	result = Validate(in, feb2025)
	assert.Contains(t, result.Errors, FieldExpiry)

	// A card expiring this month is still accepted.
	jan2025 := time.Date(2025, time.January, 31, 23, 0, 0, 0, time.UTC)
	result = Validate(in, jan2025)
	assert.NotContains(t, result.Errors, FieldExpiry)

	// Malformed patterns.
	for _, bad := range []string{"13/25", "00/25", "1/25", "01/2025", "0125", ""} {
		in.Expiry = bad
		result = Validate(in, dec2024)
		assert.Contains(t, result.Errors, FieldExpiry, "expiry %q", bad)
	}
}

func TestValidate_CVC(t *testing.T) {
	now := time.Date(2024, time.December, 15, 12, 0, 0, 0, time.UTC)

	for _, good := range []string{"123", "1234"} {
		in := validInput()
		in.CVC = good
		assert.NotContains(t, Validate(in, now).Errors, FieldCVC)
	}
	for _, bad := range []string{"12", "12345", "12a", ""} {
		in := validInput()
		in.CVC = bad
		assert.Contains(t, Validate(in, now).Errors, FieldCVC, "cvc %q", bad)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "4111 1111 1111 1111", FormatNumber("4111111111111111"))
	assert.Equal(t, "4111 11", FormatNumber("411111"))
	assert.Equal(t, "", FormatNumber(""))

	// Formatting an already-formatted number yields the same string.
	once := FormatNumber("4111111111111111")
	assert.Equal(t, once, FormatNumber(once))
}

func TestLastFour(t *testing.T) {
	assert.Equal(t, "1111", LastFour("4111 1111 1111 1111"))
	assert.Equal(t, "", LastFour("411"))
}
