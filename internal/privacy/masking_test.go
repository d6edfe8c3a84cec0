package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhoneNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"+919876543210", "+********3210"},
		{"9876543210", "******3210"},
		{"", ""},
		{"+123", "+***"},
		{"1234", "****"},
		{"+12345", "+*2345"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, MaskPhoneNumber(tt.input))
		})
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "j*********@curalink.com", MaskEmail("jane.smith@curalink.com"))
	assert.Equal(t, "a@x.org", MaskEmail("a@x.org"))
	assert.Equal(t, "*****", MaskEmail("nobox"))
	assert.Equal(t, "", MaskEmail(""))
}

func TestMaskSensitiveFields(t *testing.T) {
	masked := MaskSensitiveFields(map[string]interface{}{
		"phone":      "9876543210",
		"email":      "sarah@example.com",
		"notes":      "allergic",
		"contact_id": "c-1",
		"count":      3,
	})

	assert.Equal(t, "******3210", masked["phone"])
	assert.Equal(t, "s****@example.com", masked["email"])
	assert.Equal(t, "********", masked["notes"])
	assert.Equal(t, "c-1", masked["contact_id"])
	assert.Equal(t, 3, masked["count"])

	assert.Nil(t, MaskSensitiveFields(nil))
}
