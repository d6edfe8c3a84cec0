package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEventColor(t *testing.T) {
	tests := []struct {
		eventType string
		expected  string
	}{
		{EventTypeAppointment, "#10b981"},
		{EventTypeBirthday, "#8b5cf6"},
		{EventTypeAnniversary, "#06b6d4"},
		{EventTypeFollowUp, "#f59e0b"},
		{EventTypeConsultation, "#ef4444"},
		{EventTypeReminder, "#6366f1"},
		{"house-call", "#123456"},
	}

	for _, tt := range tests {
		t.Run(tt.eventType, func(t *testing.T) {
			assert.Equal(t, tt.expected, EventColor(tt.eventType, "#123456"))
		})
	}
}

func TestEventTypes_AllHaveColors(t *testing.T) {
	for _, et := range EventTypes {
		assert.NotEmpty(t, EventColor(et, ""), et)
	}
}
