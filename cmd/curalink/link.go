package main

import (
	"encoding/json"
	"net/http"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/metrics"
	"curalink/internal/models"
	"curalink/internal/service"
	"curalink/internal/templating"

	"github.com/sirupsen/logrus"
)

type linkRequest struct {
	ContactID   string   `json:"contact_id"`
	TemplateIDs []string `json:"template_ids"`
}

type linkResponse struct {
	URL       string `json:"url"`
	Message   string `json:"message"`
	HistoryID string `json:"history_id"`
}

// handleLink processes the selected templates for a contact, records the
// message in history and returns the chat link that opens it.
func (s *Server) handleLink() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req linkRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, constants.DefaultBridgeMaxMessageBytes)).Decode(&req); err != nil {
			s.writeError(w, r, errors.Wrap(err, errors.ErrCodeInvalidInput, "invalid link request"))
			return
		}
		if req.ContactID == "" {
			s.writeError(w, r, errors.NewValidationError("contact_id", "", "contact_id is required"))
			return
		}
		if len(req.TemplateIDs) == 0 {
			s.writeError(w, r, errors.NewValidationError("template_ids", "", "at least one template is required"))
			return
		}

		contact, err := s.svc.Contacts.GetByID(ctx, req.ContactID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		if contact == nil {
			s.writeError(w, r, errors.NewNotFoundError("contact", req.ContactID))
			return
		}
		if contact.Phone == "" {
			s.writeError(w, r, errors.NewValidationError("phone", "", "contact has no phone number"))
			return
		}

		fallbackOrg := s.cfg.Messaging.Organization
		if fallbackOrg == "" {
			fallbackOrg = constants.DefaultOrganization
		}
		values := templating.DefaultValues().WithOrganization(
			s.svc.Settings.Value(ctx, constants.SettingOrganization, fallbackOrg),
		)

		messages := make([]string, 0, len(req.TemplateIDs))
		titles := make([]any, 0, len(req.TemplateIDs))
		for _, id := range req.TemplateIDs {
			tmpl, err := s.svc.Templates.GetByID(ctx, id)
			if err != nil {
				s.writeError(w, r, err)
				return
			}
			if tmpl == nil {
				s.writeError(w, r, errors.NewNotFoundError("template", id))
				return
			}
			messages = append(messages, templating.Process(tmpl.Content, contact.Name, values))
			titles = append(titles, tmpl.Title)
		}

		message := templating.Combine(messages...)
		entry := models.MessageHistoryEntry{
			ContactID:      contact.ID,
			MessageContent: message,
			Metadata: map[string]any{
				"template_count": len(req.TemplateIDs),
				"templates":      titles,
			},
		}
		if len(req.TemplateIDs) == 1 {
			entry.TemplateID = req.TemplateIDs[0]
		}

		saved, err := s.svc.History.Create(ctx, entry)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		metrics.IncrementCounter(metrics.LinksBuilt, map[string]string{
			"templates": bucketTemplateCount(len(req.TemplateIDs)),
		}, "Chat links built")

		s.logger.WithFields(logrus.Fields{
			service.LogFieldContactID: contact.ID,
			service.LogFieldHistoryID: saved.ID,
			service.LogFieldCount:     len(req.TemplateIDs),
		}).Info("Chat link built")

		s.writeJSON(w, r, http.StatusOK, linkResponse{
			URL:       s.links.ChatLink(contact.Phone, message),
			Message:   message,
			HistoryID: saved.ID,
		})
	}
}

func bucketTemplateCount(n int) string {
	if n == 1 {
		return "single"
	}
	return "combined"
}
