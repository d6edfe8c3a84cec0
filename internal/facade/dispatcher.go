package facade

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/metrics"
	"curalink/internal/models"
	"curalink/internal/service"
	"curalink/internal/tracing"

	"github.com/sirupsen/logrus"
)

// Dispatcher routes channel/action calls to the domain services.
// The host bridge and the local emulation both serve calls through it.
type Dispatcher struct {
	svc    *service.Services
	mode   string
	logger *logrus.Logger
}

// NewDispatcher creates a dispatcher. mode labels spans and metrics ("remote" on the host, "local" in emulation).
func NewDispatcher(svc *service.Services, mode string, logger *logrus.Logger) *Dispatcher {
	return &Dispatcher{svc: svc, mode: mode, logger: logger}
}

// Invoke runs one call and returns its JSON-encoded result
func (d *Dispatcher) Invoke(ctx context.Context, channel, action string, payload json.RawMessage) (json.RawMessage, error) {
	start := time.Now()
	ctx, span := tracing.StartFacadeSpan(ctx, d.mode, channel, action)

	result, err := d.route(ctx, channel, action, payload)
	var out json.RawMessage
	if err == nil {
		out, err = json.Marshal(result)
		if err != nil {
			err = errors.Wrap(err, errors.ErrCodeInternalError, "failed to encode result")
		}
	}
	tracing.EndSpan(span, err)

	status := "ok"
	if err != nil {
		status = string(errors.GetCode(err))
	}
	labels := map[string]string{"channel": channel, "action": action, "mode": d.mode}
	metrics.RecordTimer(metrics.FacadeCallDuration, time.Since(start), labels, "Facade call duration")
	labels["status"] = status
	metrics.IncrementCounter(metrics.FacadeCalls, labels, "Facade calls")

	entry := d.logger.WithFields(logrus.Fields{
		service.LogFieldChannel:  channel,
		service.LogFieldAction:   action,
		service.LogFieldMode:     d.mode,
		service.LogFieldDuration: time.Since(start).Milliseconds(),
	})
	if err != nil {
		entry.WithError(err).WithField(service.LogFieldErrorCode, errors.GetCode(err)).Debug("Facade call failed")
		return nil, err
	}
	entry.Debug("Facade call completed")
	return out, nil
}

func (d *Dispatcher) route(ctx context.Context, channel, action string, payload json.RawMessage) (any, error) {
	switch channel {
	case ChannelContacts:
		return d.contacts(ctx, action, payload)
	case ChannelTemplates:
		return d.templates(ctx, action, payload)
	case ChannelEvents:
		return d.events(ctx, action, payload)
	case ChannelHistory:
		return d.history(ctx, action, payload)
	case ChannelSettings:
		return d.settings(ctx, action, payload)
	default:
		return nil, errors.NewUnknownActionError(channel, action)
	}
}

func (d *Dispatcher) contacts(ctx context.Context, action string, payload json.RawMessage) (any, error) {
	svc := d.svc.Contacts
	switch action {
	case ActionGetAll:
		return svc.GetAll(ctx)
	case ActionGetByID:
		id, err := decodeID(payload)
		if err != nil {
			return nil, err
		}
		return svc.GetByID(ctx, id)
	case ActionCreate, ActionUpdate:
		contact, err := decode[models.Contact](payload, ChannelContacts, action)
		if err != nil {
			return nil, err
		}
		if action == ActionCreate {
			return svc.Create(ctx, contact)
		}
		return svc.Update(ctx, contact)
	case ActionDelete:
		id, err := decodeID(payload)
		if err != nil {
			return nil, err
		}
		return deleted(svc.Delete(ctx, id))
	case ActionSearch:
		search, err := decodeOptional[models.ContactSearch](payload, ChannelContacts, action)
		if err != nil {
			return nil, err
		}
		return svc.Search(ctx, search)
	default:
		return nil, errors.NewUnknownActionError(ChannelContacts, action)
	}
}

func (d *Dispatcher) templates(ctx context.Context, action string, payload json.RawMessage) (any, error) {
	svc := d.svc.Templates
	switch action {
	case ActionGetAll:
		return svc.GetAll(ctx)
	case ActionGetByID:
		id, err := decodeID(payload)
		if err != nil {
			return nil, err
		}
		return svc.GetByID(ctx, id)
	case ActionCreate, ActionUpdate:
		tmpl, err := decode[models.Template](payload, ChannelTemplates, action)
		if err != nil {
			return nil, err
		}
		if action == ActionCreate {
			return svc.Create(ctx, tmpl)
		}
		return svc.Update(ctx, tmpl)
	case ActionDelete:
		id, err := decodeID(payload)
		if err != nil {
			return nil, err
		}
		return deleted(svc.Delete(ctx, id))
	default:
		return nil, errors.NewUnknownActionError(ChannelTemplates, action)
	}
}

func (d *Dispatcher) events(ctx context.Context, action string, payload json.RawMessage) (any, error) {
	svc := d.svc.Events
	switch action {
	case ActionGetAll:
		return svc.GetAll(ctx)
	case ActionGetByID, ActionMarkCompleted, ActionMarkReminderSent, ActionDelete, ActionGetByContact:
		id, err := decodeID(payload)
		if err != nil {
			return nil, err
		}
		switch action {
		case ActionGetByID:
			return svc.GetByID(ctx, id)
		case ActionMarkCompleted:
			return svc.MarkCompleted(ctx, id)
		case ActionMarkReminderSent:
			return svc.MarkReminderSent(ctx, id)
		case ActionGetByContact:
			return svc.GetByContact(ctx, id)
		default:
			return deleted(svc.Delete(ctx, id))
		}
	case ActionCreate, ActionUpdate:
		event, err := decode[models.Event](payload, ChannelEvents, action)
		if err != nil {
			return nil, err
		}
		if action == ActionCreate {
			return svc.Create(ctx, event)
		}
		return svc.Update(ctx, event)
	case ActionGetUpcoming:
		days := constants.DefaultUpcomingWindowDays
		if !isEmptyPayload(payload) {
			if err := json.Unmarshal(payload, &days); err != nil {
				return nil, invalidPayload(ChannelEvents, action, err)
			}
		}
		return svc.GetUpcoming(ctx, days)
	case ActionGetByDate:
		date, err := decode[string](payload, ChannelEvents, action)
		if err != nil {
			return nil, err
		}
		return svc.GetByDate(ctx, date)
	case ActionGetNeedingReminders:
		return svc.GetNeedingReminders(ctx)
	default:
		return nil, errors.NewUnknownActionError(ChannelEvents, action)
	}
}

func (d *Dispatcher) history(ctx context.Context, action string, payload json.RawMessage) (any, error) {
	svc := d.svc.History
	switch action {
	case ActionGetAll:
		return svc.GetAll(ctx)
	case ActionGetByContact:
		id, err := decodeID(payload)
		if err != nil {
			return nil, err
		}
		return svc.GetByContact(ctx, id)
	case ActionCreate:
		entry, err := decode[models.MessageHistoryEntry](payload, ChannelHistory, action)
		if err != nil {
			return nil, err
		}
		return svc.Create(ctx, entry)
	case ActionSearch:
		term, err := decodeOptional[string](payload, ChannelHistory, action)
		if err != nil {
			return nil, err
		}
		return svc.Search(ctx, term)
	default:
		return nil, errors.NewUnknownActionError(ChannelHistory, action)
	}
}

func (d *Dispatcher) settings(ctx context.Context, action string, payload json.RawMessage) (any, error) {
	svc := d.svc.Settings
	switch action {
	case ActionGet:
		key, err := decode[string](payload, ChannelSettings, action)
		if err != nil {
			return nil, err
		}
		return svc.Get(ctx, key)
	case ActionSet:
		p, err := decode[SettingPayload](payload, ChannelSettings, action)
		if err != nil {
			return nil, err
		}
		return svc.Set(ctx, p.Key, p.Value)
	case ActionGetAll:
		return svc.GetAll(ctx)
	default:
		return nil, errors.NewUnknownActionError(ChannelSettings, action)
	}
}

func deleted(err error) (any, error) {
	if err != nil {
		return nil, err
	}
	return SuccessResult{Success: true}, nil
}

// decode requires a payload and unmarshals it into T
func decode[T any](payload json.RawMessage, channel, action string) (T, error) {
	var v T
	if isEmptyPayload(payload) {
		return v, errors.NewValidationError("payload", "", fmt.Sprintf("%s.%s requires a payload", channel, action))
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, invalidPayload(channel, action, err)
	}
	return v, nil
}

// decodeOptional treats a missing payload as the zero value of T
func decodeOptional[T any](payload json.RawMessage, channel, action string) (T, error) {
	var v T
	if isEmptyPayload(payload) {
		return v, nil
	}
	if err := json.Unmarshal(payload, &v); err != nil {
		return v, invalidPayload(channel, action, err)
	}
	return v, nil
}

func decodeID(payload json.RawMessage) (string, error) {
	var id string
	if isEmptyPayload(payload) || json.Unmarshal(payload, &id) != nil || id == "" {
		return "", errors.NewValidationError("id", string(payload), "a non-empty id string is required")
	}
	return id, nil
}

func invalidPayload(channel, action string, err error) error {
	return errors.Wrap(err, errors.ErrCodeInvalidInput, fmt.Sprintf("invalid payload for %s.%s", channel, action))
}

func isEmptyPayload(p json.RawMessage) bool {
	trimmed := bytes.TrimSpace(p)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
