package validation

import (
	"strings"
	"testing"

	"curalink/internal/errors"

	"github.com/stretchr/testify/assert"
)

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name        string
		phone       string
		expectError bool
	}{
		{"local number", "9876543210", false},
		{"international", "+91 98765 43210", false},
		{"with separators", "(555) 123-4567", false},
		{"empty", "", true},
		{"too short", "+123", true},
		{"letters", "98765abc10", true},
		{"plus in middle", "98+76543210", true},
		{"too long", strings.Repeat("1", 21), true},
		{"arabic-indic digits", "٩٨٧٦٥٤٣٢١٠", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhoneNumber(tt.phone)
			if tt.expectError {
				assert.Error(t, err)
				assert.Equal(t, errors.ErrCodeInvalidInput, errors.GetCode(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("jane.smith@curalink.com"))
	assert.Error(t, ValidateEmail("jane.smith"))
	assert.Error(t, ValidateEmail("Jane <jane@curalink.com>"))
}

func TestValidateRequired(t *testing.T) {
	assert.NoError(t, ValidateRequired("Sarah", "name"))

	err := ValidateRequired("   ", "name")
	assert.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.GetCode(err))
}

func TestValidateStringLength(t *testing.T) {
	assert.NoError(t, ValidateStringLength("abc", "title", 1, 3))
	assert.Error(t, ValidateStringLength("", "title", 1, 3))
	assert.Error(t, ValidateStringLength("abcd", "title", 1, 3))
}

func TestValidateNumericRange(t *testing.T) {
	assert.NoError(t, ValidateNumericRange(1, "days", 0, MaxUpcomingWindow))
	assert.Error(t, ValidateNumericRange(-1, "days", 0, MaxUpcomingWindow))
	assert.Error(t, ValidateNumericRange(400, "days", 0, MaxUpcomingWindow))
}

func TestValidateDate(t *testing.T) {
	assert.NoError(t, ValidateDate("2026-10-19", "event_date"))
	assert.Error(t, ValidateDate("2026-13-01", "event_date"))
	assert.Error(t, ValidateDate("19/10/2026", "event_date"))
	assert.Error(t, ValidateDate("", "event_date"))
}

func TestValidateColor(t *testing.T) {
	assert.NoError(t, ValidateColor("#10b981"))
	assert.NoError(t, ValidateColor("#6366F1"))
	assert.Error(t, ValidateColor("10b981"))
	assert.Error(t, ValidateColor("#10b98g"))
	assert.Error(t, ValidateColor("#fff"))
}
