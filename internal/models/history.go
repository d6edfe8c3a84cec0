package models

import "time"

// MessageHistoryEntry records one message handed off to the chat service.
// ContactName, ContactPhone and TemplateTitle are filled from joins on read.
type MessageHistoryEntry struct {
	ID             string         `json:"id"`
	ContactID      string         `json:"contact_id"`
	MessageContent string         `json:"message_content"`
	Timestamp      time.Time      `json:"timestamp"`
	TemplateID     string         `json:"template_id,omitempty"`
	SentVia        string         `json:"sent_via"`
	SendStatus     string         `json:"send_status"`
	Metadata       map[string]any `json:"metadata"`
	ContactName    string         `json:"contact_name,omitempty"`
	ContactPhone   string         `json:"contact_phone,omitempty"`
	TemplateTitle  string         `json:"template_title,omitempty"`
}
