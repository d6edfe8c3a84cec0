// Package seed holds the default rows a fresh store starts with.
package seed

import (
	"curalink/internal/constants"
	"curalink/internal/models"
	"curalink/internal/templating"
)

// Setting is a default key/value pair
type Setting struct {
	Key   string
	Value string
}

// Settings returns the default settings in insertion order
func Settings() []Setting {
	return []Setting{
		{"app_version", constants.AppVersion},
		{constants.SettingSchemaVersion, "1.0.0"},
		{"user_name", "Dr. Jane Smith"},
		{"user_email", "jane.smith@curalink.com"},
		{constants.SettingOrganization, constants.DefaultOrganization},
		{"dark_mode", "true"},
		{"email_notifications", "true"},
		{constants.SettingEventReminders, "true"},
	}
}

// Templates returns the default message templates, keyed by title.
// Variables are derived from the content.
func Templates() []models.Template {
	templates := []models.Template{
		{
			Title:    "Appointment Reminder",
			Content:  "Hi {ClientName}, this is a friendly reminder about your appointment scheduled for {Date} at {Time}. Please reply to confirm or let us know if you need to reschedule. Looking forward to seeing you!",
			Category: "appointment",
		},
		{
			Title:    "Follow-up Care",
			Content:  "Hello {ClientName}, we hope you're doing well! This is a follow-up message regarding your recent visit. Please don't hesitate to reach out if you have any questions or concerns.",
			Category: "followup",
		},
		{
			Title:    "Birthday Wishes",
			Content:  "Happy Birthday, {ClientName}! 🎉 Wishing you a wonderful day filled with joy and celebration. Thank you for being a valued client. We hope this year brings you health and happiness!",
			Category: "birthday",
		},
		{
			Title:    "Welcome New Client",
			Content:  "Welcome to {Organization}, {ClientName}! We're thrilled to have you with us. Our team is dedicated to providing you with exceptional care and service. Please feel free to reach out if you have any questions.",
			Category: "welcome",
		},
	}
	for i := range templates {
		templates[i].Variables = templating.ExtractVariables(templates[i].Content)
	}
	return templates
}

// Contacts returns the sample contacts, keyed by name
func Contacts() []models.Contact {
	return []models.Contact{
		{
			Name:         "Sarah Johnson",
			Phone:        "1234567890",
			Email:        "sarah.johnson@email.com",
			Organization: "Self",
			Status:       constants.DefaultContactStatus,
			Tags:         []string{"Patient"},
		},
		{
			Name:         "Michael Chen",
			Phone:        "1234567891",
			Email:        "michael.chen@email.com",
			Organization: "Tech Corp",
			Status:       constants.DefaultContactStatus,
			Tags:         []string{"Patient"},
		},
		{
			Name:         "Emily Rodriguez",
			Phone:        "1234567892",
			Email:        "emily.rodriguez@email.com",
			Organization: "Design Studio",
			Status:       "Patient",
			Tags:         []string{"Patient", "Referral"},
		},
		{
			Name:         "David Thompson",
			Phone:        "1234567893",
			Email:        "david.thompson@hospital.com",
			Organization: "City Hospital",
			Status:       "Doctor",
			Tags:         []string{"Doctor", "Referral"},
		},
	}
}
