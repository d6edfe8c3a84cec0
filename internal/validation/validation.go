package validation

import (
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"curalink/internal/errors"
)

// Field limits
const (
	MinPhoneDigits    = 5
	MaxPhoneDigits    = 20
	MaxNameLength     = 200
	MaxTitleLength    = 200
	MaxContentLength  = 4096
	MaxNotesLength    = 10000
	MaxSettingKeyLen  = 100
	MaxUpcomingWindow = 366
	dateLayout        = "2006-01-02"
)

// ValidatePhoneNumber accepts digits with the usual separators and an optional leading '+'
func ValidatePhoneNumber(phone string) error {
	if phone == "" {
		return errors.New(errors.ErrCodeInvalidInput, "phone number cannot be empty")
	}

	digits := 0
	for i, char := range phone {
		switch {
		case char >= '0' && char <= '9':
			digits++
		case char == '+' && i == 0:
		case char == ' ' || char == '-' || char == '(' || char == ')' || char == '.':
		default:
			return errors.New(errors.ErrCodeInvalidInput, "phone number contains invalid characters")
		}
	}

	if digits < MinPhoneDigits {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("phone number must be at least %d digits", MinPhoneDigits))
	}
	if digits > MaxPhoneDigits {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("phone number too long (max %d digits)", MaxPhoneDigits))
	}

	return nil
}

// ValidateEmail checks a bare address such as "jane@example.com"
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New(errors.ErrCodeInvalidInput, "invalid email address")
	}
	return nil
}

// ValidateRequired rejects empty or whitespace-only values
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewValidationError(fieldName, value, "is required")
	}
	return nil
}

// ValidateStringLength validates string length against bounds
func ValidateStringLength(value, fieldName string, minLength, maxLength int) error {
	if len(value) < minLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too short (min %d characters)", fieldName, minLength))
	}

	if len(value) > maxLength {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too long (max %d characters)", fieldName, maxLength))
	}

	return nil
}

// ValidateNumericRange validates numeric values against bounds
func ValidateNumericRange(value int, fieldName string, min, max int) error {
	if value < min {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too small (min %d)", fieldName, min))
	}

	if value > max {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("%s too large (max %d)", fieldName, max))
	}

	return nil
}

// ValidateDate checks a YYYY-MM-DD calendar date
func ValidateDate(date, fieldName string) error {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return errors.NewValidationError(fieldName, date, "must be a date in YYYY-MM-DD form")
	}
	return nil
}

// ValidateColor checks a #rrggbb hex color
func ValidateColor(color string) error {
	if len(color) != 7 || color[0] != '#' {
		return errors.NewValidationError("color", color, "must be a #rrggbb hex color")
	}
	for _, c := range color[1:] {
		if !unicode.Is(unicode.ASCII_Hex_Digit, c) {
			return errors.NewValidationError("color", color, "must be a #rrggbb hex color")
		}
	}
	return nil
}
