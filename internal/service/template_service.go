package service

import (
	"context"
	"strings"
	"time"

	"curalink/internal/constants"
	"curalink/internal/errors"
	"curalink/internal/models"
	"curalink/internal/templating"
	"curalink/internal/validation"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// TemplateDatabaseService defines the database operations needed by TemplateService
type TemplateDatabaseService interface {
	SaveTemplate(ctx context.Context, tmpl *models.Template) error
	UpdateTemplate(ctx context.Context, tmpl *models.Template) (bool, error)
	GetTemplate(ctx context.Context, id string) (*models.Template, error)
	ListTemplates(ctx context.Context) ([]models.Template, error)
	DeleteTemplate(ctx context.Context, id string) error
}

// TemplateService manages message templates. Variables are always derived
// from the content, on create and on update.
type TemplateService struct {
	db     TemplateDatabaseService
	logger *errors.Logger
	now    func() time.Time
	newID  func() string
}

func NewTemplateService(db TemplateDatabaseService, logger *logrus.Logger) *TemplateService {
	return &TemplateService{
		db:     db,
		logger: errors.WrapLogger(logger),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// GetAll returns templates ordered by category then title
func (ts *TemplateService) GetAll(ctx context.Context) ([]models.Template, error) {
	templates, err := ts.db.ListTemplates(ctx)
	if err != nil {
		return nil, errors.NewDatabaseError("list templates", err)
	}
	return templates, nil
}

func (ts *TemplateService) GetByID(ctx context.Context, id string) (*models.Template, error) {
	tmpl, err := ts.db.GetTemplate(ctx, id)
	if err != nil {
		return nil, errors.NewDatabaseError("get template", err).WithContext(LogFieldTemplateID, id)
	}
	return tmpl, nil
}

func (ts *TemplateService) Create(ctx context.Context, tmpl models.Template) (*models.Template, error) {
	if err := prepareTemplate(&tmpl); err != nil {
		return nil, err
	}

	now := ts.now()
	tmpl.ID = ts.newID()
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now

	if err := ts.db.SaveTemplate(ctx, &tmpl); err != nil {
		appErr := errors.NewDatabaseError("save template", err)
		ts.logger.LogError(appErr, "Failed to create template")
		return nil, appErr
	}

	ts.logger.WithFields(logrus.Fields{
		LogFieldTemplateID: tmpl.ID,
		LogFieldCount:      len(tmpl.Variables),
	}).Debug("Template created")

	return ts.GetByID(ctx, tmpl.ID)
}

// Update replaces a template. A missing template yields nil without error.
func (ts *TemplateService) Update(ctx context.Context, tmpl models.Template) (*models.Template, error) {
	if err := validation.ValidateRequired(tmpl.ID, "id"); err != nil {
		return nil, err
	}
	if err := prepareTemplate(&tmpl); err != nil {
		return nil, err
	}

	tmpl.UpdatedAt = ts.now()
	ok, err := ts.db.UpdateTemplate(ctx, &tmpl)
	if err != nil {
		return nil, errors.NewDatabaseError("update template", err).WithContext(LogFieldTemplateID, tmpl.ID)
	}
	if !ok {
		return nil, nil
	}
	return ts.GetByID(ctx, tmpl.ID)
}

// Delete removes a template; history entries that used it keep their text
func (ts *TemplateService) Delete(ctx context.Context, id string) error {
	if err := ts.db.DeleteTemplate(ctx, id); err != nil {
		return errors.NewDatabaseError("delete template", err).WithContext(LogFieldTemplateID, id)
	}
	ts.logger.WithField(LogFieldTemplateID, id).Debug("Template deleted")
	return nil
}

func prepareTemplate(t *models.Template) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := validation.ValidateRequired(t.Title, "title"); err != nil {
		return err
	}
	if err := validation.ValidateStringLength(t.Title, "title", 1, validation.MaxTitleLength); err != nil {
		return err
	}
	if err := validation.ValidateRequired(t.Content, "content"); err != nil {
		return err
	}
	if err := validation.ValidateStringLength(t.Content, "content", 1, validation.MaxContentLength); err != nil {
		return err
	}

	if t.Category == "" {
		t.Category = constants.DefaultTemplateCategory
	}
	t.Variables = templating.ExtractVariables(t.Content)
	return nil
}
