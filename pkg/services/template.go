package services

import (
	"context"
	"fmt"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// Template is the authoring surface for reusable item templates.
type Template struct {
	persistence persistence.Persistence
}

// NewTemplate creates a new template service.
func NewTemplate(persistence persistence.Persistence) *Template {
	return &Template{persistence: persistence}
}

// Create adds a new active template.
func (t *Template) Create(ctx context.Context, name, description, category string) (*models.Template, error) {
	template := &models.Template{
		Name:        name,
		Description: description,
		Category:    category,
		Active:      true,
	}

	err := t.persistence.TemplateRepository().Save(ctx, template)
	if err != nil {
		return nil, fmt.Errorf("failed to create template: %w", err)
	}

	return template, nil
}

// List returns templates, optionally restricted to active ones or a category.
func (t *Template) List(ctx context.Context, activeOnly bool, category string) ([]*models.Template, error) {
	templates, err := t.persistence.TemplateRepository().ListTemplates(ctx, persistence.ListTemplatesOptions{
		ActiveOnly: activeOnly,
		Category:   category,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	return templates, nil
}

// FetchByID retrieves a template by its ID.
func (t *Template) FetchByID(ctx context.Context, id string) (*models.Template, error) {
	template, err := t.persistence.TemplateRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	return template, nil
}

// AddItem appends an item to a template, assigning the next ordinal.
func (t *Template) AddItem(ctx context.Context, templateID string, input ItemInput) (*models.TemplateItem, error) {
	if _, err := t.FetchByID(ctx, templateID); err != nil {
		return nil, err
	}

	items, err := t.persistence.TemplateRepository().ListItems(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list template items: %w", err)
	}

	ordinal := 0
	for _, existing := range items {
		if existing.Ordinal > ordinal {
			ordinal = existing.Ordinal
		}
	}

	item := &models.TemplateItem{
		TemplateID:     templateID,
		Ordinal:        ordinal + 1,
		Category:       input.Category,
		Description:    input.Description,
		ExpectedResult: input.ExpectedResult,
		Notes:          input.Notes,
	}

	err = t.persistence.TemplateRepository().SaveItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add template item: %w", err)
	}

	return item, nil
}

// Items returns the template's items in ordinal order.
func (t *Template) Items(ctx context.Context, templateID string) ([]*models.TemplateItem, error) {
	if _, err := t.FetchByID(ctx, templateID); err != nil {
		return nil, err
	}

	items, err := t.persistence.TemplateRepository().ListItems(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list template items: %w", err)
	}

	return items, nil
}
