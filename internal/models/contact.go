package models

import "time"

// Contact is a person the practitioner messages
type Contact struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Phone        string    `json:"phone,omitempty"`
	Email        string    `json:"email,omitempty"`
	Organization string    `json:"organization,omitempty"`
	Tags         []string  `json:"tags"`
	Status       string    `json:"status"`
	Notes        string    `json:"notes,omitempty"`
	AvatarPath   string    `json:"avatar_path,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ContactSearch filters contacts by a free-text term and an optional status
type ContactSearch struct {
	Term   string `json:"term"`
	Status string `json:"status,omitempty"`
}
