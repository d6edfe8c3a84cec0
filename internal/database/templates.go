package database

import (
	"context"
	"fmt"

	"curalink/internal/codec"
	"curalink/internal/models"
)

// SaveTemplate inserts a new template
func (d *Database) SaveTemplate(ctx context.Context, tmpl *models.Template) error {
	vars, err := codec.EncodeList(tmpl.Variables)
	if err != nil {
		return err
	}

	_, err = d.Exec(ctx, InsertTemplateQuery,
		tmpl.ID, tmpl.Title, tmpl.Content, vars, tmpl.Category,
		tmpl.CreatedAt.UTC(), tmpl.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}
	return nil
}

// UpdateTemplate reports false when no row matched
func (d *Database) UpdateTemplate(ctx context.Context, tmpl *models.Template) (bool, error) {
	vars, err := codec.EncodeList(tmpl.Variables)
	if err != nil {
		return false, err
	}

	res, err := d.Exec(ctx, UpdateTemplateQuery,
		tmpl.Title, tmpl.Content, vars, tmpl.Category, tmpl.UpdatedAt.UTC(), tmpl.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update template: %w", err)
	}
	return res.AffectedCount > 0, nil
}

func (d *Database) GetTemplate(ctx context.Context, id string) (*models.Template, error) {
	var tmpl *models.Template
	found, err := d.QueryOne(ctx, func(s Scanner) error {
		t, err := scanTemplate(s)
		tmpl = t
		return err
	}, SelectTemplateByIDQuery, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get template: %w", err)
	}
	if !found {
		return nil, nil
	}
	return tmpl, nil
}

// ListTemplates returns all templates ordered by category, then title
func (d *Database) ListTemplates(ctx context.Context) ([]models.Template, error) {
	templates := []models.Template{}
	err := d.QueryAll(ctx, func(s Scanner) error {
		t, err := scanTemplate(s)
		if err != nil {
			return err
		}
		templates = append(templates, *t)
		return nil
	}, SelectAllTemplatesQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	return templates, nil
}

// DeleteTemplate removes a template; history rows keep their content with template_id cleared
func (d *Database) DeleteTemplate(ctx context.Context, id string) error {
	if _, err := d.Exec(ctx, DeleteTemplateQuery, id); err != nil {
		return fmt.Errorf("failed to delete template: %w", err)
	}
	return nil
}

func scanTemplate(s Scanner) (*models.Template, error) {
	var (
		t    models.Template
		vars string
	)
	if err := s.Scan(&t.ID, &t.Title, &t.Content, &vars, &t.Category, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.Variables, err = codec.DecodeList(vars); err != nil {
		return nil, err
	}
	return &t, nil
}
