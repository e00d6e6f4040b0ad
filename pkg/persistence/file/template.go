package file

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// TemplateRepository handles reusable-template file operations.
type TemplateRepository struct {
	root string
	mu   *sync.Mutex
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(root string, mu *sync.Mutex) *TemplateRepository {
	return &TemplateRepository{root: root, mu: mu}
}

func (r *TemplateRepository) templatesDir() string {
	return filepath.Join(r.root, "templates")
}

func (r *TemplateRepository) itemsDir() string {
	return filepath.Join(r.root, "template_items")
}

// ListTemplates returns templates in name order, optionally filtered.
func (r *TemplateRepository) ListTemplates(_ context.Context, opts persistence.ListTemplatesOptions) ([]*models.Template, error) {
	templates := make([]*models.Template, 0)

	err := readAll(r.templatesDir(), func(data []byte) error {
		var template models.Template
		if err := json.Unmarshal(data, &template); err != nil {
			return err
		}

		if opts.ActiveOnly && !template.Active {
			return nil
		}

		if opts.Category != "" && template.Category != opts.Category {
			return nil
		}

		templates = append(templates, &template)

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(templates, func(i, j int) bool {
		return templates[i].Name < templates[j].Name
	})

	return templates, nil
}

// GetByID returns a template by its ID, or (nil, nil) when absent.
func (r *TemplateRepository) GetByID(_ context.Context, id string) (*models.Template, error) {
	var template models.Template

	found, err := readDocument(r.templatesDir(), id, &template)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &template, nil
}

// Save inserts or updates a template.
func (r *TemplateRepository) Save(_ context.Context, template *models.Template) error {
	now := time.Now().UTC()

	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	if template.ID == "" {
		template.ID = uuid.New().String()
	}

	return writeDocument(r.templatesDir(), template.ID, template)
}

// SaveItem inserts a template item and bumps the template's updated_at.
func (r *TemplateRepository) SaveItem(ctx context.Context, item *models.TemplateItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	err := writeDocument(r.itemsDir(), item.ID, item)
	if err != nil {
		return err
	}

	template, err := r.GetByID(ctx, item.TemplateID)
	if err != nil {
		return err
	}

	if template != nil {
		return r.Save(ctx, template)
	}

	return nil
}

// ListItems returns the template's items in ordinal order.
func (r *TemplateRepository) ListItems(_ context.Context, templateID string) ([]*models.TemplateItem, error) {
	items := make([]*models.TemplateItem, 0)

	err := readAll(r.itemsDir(), func(data []byte) error {
		var item models.TemplateItem
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}

		if item.TemplateID == templateID {
			items = append(items, &item)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Ordinal < items[j].Ordinal
	})

	return items, nil
}
