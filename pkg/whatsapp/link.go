package whatsapp

import (
	"net/url"
	"strings"

	"curalink/internal/constants"
)

const localNumberDigits = 10

// LinkBuilder builds chat deep links that open a conversation with prefilled text
type LinkBuilder struct {
	domain      string
	countryCode string
}

// NewLinkBuilder returns a builder for https://<domain>/<phone>?text=<message>.
// Empty arguments fall back to the default domain and country code.
func NewLinkBuilder(domain, countryCode string) *LinkBuilder {
	if domain == "" {
		domain = constants.DefaultChatDomain
	}
	if countryCode == "" {
		countryCode = constants.DefaultCountryCode
	}
	return &LinkBuilder{domain: domain, countryCode: countryCode}
}

// NormalizePhone strips everything but digits. A number without a leading '+'
// that has exactly ten digits is treated as local and gets the country code prepended.
func NormalizePhone(phone, countryCode string) string {
	trimmed := strings.TrimSpace(phone)
	international := strings.HasPrefix(trimmed, "+")

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, trimmed)

	if !international && len(digits) == localNumberDigits {
		return countryCode + digits
	}
	return digits
}

// NormalizePhone normalizes with the builder's country code
func (b *LinkBuilder) NormalizePhone(phone string) string {
	return NormalizePhone(phone, b.countryCode)
}

// ChatLink returns the deep link for phone with message percent-encoded
func (b *LinkBuilder) ChatLink(phone, message string) string {
	u := "https://" + b.domain + "/" + b.NormalizePhone(phone)
	if message == "" {
		return u
	}
	return u + "?text=" + encodeComponent(message)
}

// encodeComponent percent-encodes s for a query value, using %20 for spaces
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
