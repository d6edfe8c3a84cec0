package privacy

import (
	"strings"

	"curalink/internal/constants"
)

// MaskPhoneNumber masks a phone number showing only the last 4 digits
// Example: "+1234567890" -> "+******7890"
func MaskPhoneNumber(phone string) string {
	keep := constants.DefaultPhoneMaskLength
	if phone == "" {
		return ""
	}

	if strings.HasPrefix(phone, "+") {
		rest := phone[1:]
		if len(rest) <= keep {
			return "+" + strings.Repeat("*", len(rest))
		}
		return "+" + maskString(rest, keep)
	}

	return maskString(phone, keep)
}

// MaskEmail keeps the first character of the local part and the domain
// Example: "jane.smith@curalink.com" -> "j*********@curalink.com"
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return maskString(email, 0)
	}
	local, domain := email[:at], email[at:]
	return local[:1] + strings.Repeat("*", len(local)-1) + domain
}

// maskString masks a string showing only the last n characters
func maskString(s string, keepLast int) string {
	if s == "" {
		return ""
	}

	if len(s) <= keepLast {
		return strings.Repeat("*", len(s))
	}

	return strings.Repeat("*", len(s)-keepLast) + s[len(s)-keepLast:]
}

// MaskSensitiveFields applies appropriate masking to common logging fields
func MaskSensitiveFields(fields map[string]interface{}) map[string]interface{} {
	if fields == nil {
		return nil
	}

	masked := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		s, isString := v.(string)
		if !isString {
			masked[k] = v
			continue
		}

		switch k {
		case "phone", "phone_number", "contact_phone":
			masked[k] = MaskPhoneNumber(s)
		case "email", "user_email":
			masked[k] = MaskEmail(s)
		case "notes", "message_content", "message":
			masked[k] = maskString(s, 0)
		default:
			masked[k] = v
		}
	}

	return masked
}
