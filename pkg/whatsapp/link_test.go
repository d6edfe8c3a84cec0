package whatsapp

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name     string
		phone    string
		expected string
	}{
		{"ten digit local number", "9876543210", "919876543210"},
		{"local number with separators", "98765-43210", "919876543210"},
		{"international with plus", "+91 98765 43210", "919876543210"},
		{"international us number", "+1 (555) 123-4567", "15551234567"},
		{"already prefixed without plus", "919876543210", "919876543210"},
		{"short number untouched", "12345", "12345"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizePhone(tt.phone, "91"))
		})
	}
}

func TestLinkBuilder_ChatLink(t *testing.T) {
	b := NewLinkBuilder("", "")

	link := b.ChatLink("9876543210", "Hi Sarah, see you tomorrow at 2:00 PM & bring notes?")
	assert.Equal(t,
		"https://wa.me/919876543210?text=Hi%20Sarah%2C%20see%20you%20tomorrow%20at%202%3A00%20PM%20%26%20bring%20notes%3F",
		link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "Hi Sarah, see you tomorrow at 2:00 PM & bring notes?", u.Query().Get("text"))
}

func TestLinkBuilder_CustomDomainAndCountry(t *testing.T) {
	b := NewLinkBuilder("chat.example.org", "44")

	assert.Equal(t, "https://chat.example.org/447911123456", b.ChatLink("7911123456", ""))
	assert.Equal(t, "https://chat.example.org/15551234567?text=a%2Bb", b.ChatLink("+1 555 123 4567", "a+b"))
}
