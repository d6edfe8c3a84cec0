package models

import "time"

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Stats holds row counts for the main tables
type Stats struct {
	Contacts  int `json:"contacts"`
	Templates int `json:"templates"`
	Messages  int `json:"messages"`
	Events    int `json:"events"`
}
