// Package facade is the single entry point the UI uses for persistence.
// A Client either forwards calls over the host bridge or serves them from
// a local emulation; both accept the same channel/action/payload triples.
package facade

import (
	"context"
	"encoding/json"

	"curalink/internal/errors"
)

// Channels
const (
	ChannelContacts  = "contacts"
	ChannelTemplates = "templates"
	ChannelEvents    = "events"
	ChannelHistory   = "history"
	ChannelSettings  = "settings"
)

// Actions
const (
	ActionGetAll              = "getAll"
	ActionGetByID             = "getById"
	ActionCreate              = "create"
	ActionUpdate              = "update"
	ActionDelete              = "delete"
	ActionSearch              = "search"
	ActionGetUpcoming         = "getUpcoming"
	ActionGetByDate           = "getByDate"
	ActionGetByContact        = "getByContact"
	ActionMarkCompleted       = "markCompleted"
	ActionMarkReminderSent    = "markReminderSent"
	ActionGetNeedingReminders = "getNeedingReminders"
	ActionGet                 = "get"
	ActionSet                 = "set"
)

// Client modes reported by Mode
const (
	ModeRemote = "remote"
	ModeLocal  = "local"
)

// Client is the uniform persistence entry point
type Client interface {
	Invoke(ctx context.Context, channel, action string, payload json.RawMessage) (json.RawMessage, error)
	Mode() string
	Close() error
}

// Request is one bridge call frame
type Request struct {
	ID      string          `json:"id"`
	Channel string          `json:"channel"`
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response answers the Request with the same ID
type Response struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result,omitempty"`
	Error  *WireError      `json:"error,omitempty"`
}

// WireError carries an error code and message across the bridge
type WireError struct {
	Code    errors.ErrorCode `json:"code"`
	Message string           `json:"message"`
}

// SuccessResult is returned by delete actions
type SuccessResult struct {
	Success bool `json:"success"`
}

// SettingPayload is the payload of settings.set
type SettingPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

func toWireError(err error) *WireError {
	if appErr, ok := errors.As(err); ok {
		return &WireError{Code: appErr.Code, Message: appErr.Message}
	}
	return &WireError{Code: errors.ErrCodeInternalError, Message: err.Error()}
}

func (w *WireError) toError() error {
	return errors.FromWire(w.Code, w.Message)
}

// Payload marshals v for Invoke. A nil v yields an empty payload.
func Payload(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidInput, "failed to encode payload")
	}
	return b, nil
}
