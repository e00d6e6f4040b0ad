package services

import (
	"context"
	"fmt"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// ItemInput carries the authored fields shared by checklist items, template
// items, and manual phase-2 items.
type ItemInput struct {
	Category       string
	Description    string
	ExpectedResult string
	Notes          string
}

// Checklist is the authoring surface for checklists and their items. It has
// no workflow invariants of its own; the session workflow consumes its output
// read-only.
type Checklist struct {
	persistence persistence.Persistence
}

// NewChecklist creates a new checklist service.
func NewChecklist(persistence persistence.Persistence) *Checklist {
	return &Checklist{persistence: persistence}
}

// HealthCheck checks the health of the persistence layer.
func (c *Checklist) HealthCheck(ctx context.Context) (string, bool) {
	if c.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := c.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// Create adds a new draft checklist.
func (c *Checklist) Create(ctx context.Context, name, description string) (*models.Checklist, error) {
	checklist := &models.Checklist{
		Name:        name,
		Description: description,
		Status:      models.ChecklistStatusDraft,
	}

	err := c.persistence.ChecklistRepository().Save(ctx, checklist)
	if err != nil {
		return nil, fmt.Errorf("failed to create checklist: %w", err)
	}

	return checklist, nil
}

// List returns checklists, optionally restricted to published ones.
func (c *Checklist) List(ctx context.Context, publishedOnly bool) ([]*models.Checklist, error) {
	checklists, err := c.persistence.ChecklistRepository().ListChecklists(ctx, persistence.ListChecklistsOptions{
		PublishedOnly: publishedOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list checklists: %w", err)
	}

	return checklists, nil
}

// FetchByID retrieves a checklist by its ID.
func (c *Checklist) FetchByID(ctx context.Context, id string) (*models.Checklist, error) {
	checklist, err := c.persistence.ChecklistRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if checklist == nil {
		return nil, ErrChecklistNotFound
	}

	return checklist, nil
}

// AddItem appends an item to a checklist, assigning the next ordinal.
func (c *Checklist) AddItem(ctx context.Context, checklistID string, input ItemInput) (*models.ChecklistItem, error) {
	if _, err := c.FetchByID(ctx, checklistID); err != nil {
		return nil, err
	}

	items, err := c.persistence.ChecklistRepository().ListItems(ctx, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}

	ordinal := 0
	for _, existing := range items {
		if existing.Ordinal > ordinal {
			ordinal = existing.Ordinal
		}
	}

	item := &models.ChecklistItem{
		ChecklistID:    checklistID,
		Ordinal:        ordinal + 1,
		Category:       input.Category,
		Description:    input.Description,
		ExpectedResult: input.ExpectedResult,
		Notes:          input.Notes,
	}

	err = c.persistence.ChecklistRepository().SaveItem(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add checklist item: %w", err)
	}

	return item, nil
}

// Items returns the checklist's items in ordinal order.
func (c *Checklist) Items(ctx context.Context, checklistID string) ([]*models.ChecklistItem, error) {
	if _, err := c.FetchByID(ctx, checklistID); err != nil {
		return nil, err
	}

	items, err := c.persistence.ChecklistRepository().ListItems(ctx, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}

	return items, nil
}

// Publish marks a checklist as published, making it available for sessions.
func (c *Checklist) Publish(ctx context.Context, id string) (*models.Checklist, error) {
	return c.setStatus(ctx, id, models.ChecklistStatusPublished)
}

// Unpublish reverts a checklist to draft. Existing sessions keep running; new
// sessions can no longer be created against it.
func (c *Checklist) Unpublish(ctx context.Context, id string) (*models.Checklist, error) {
	return c.setStatus(ctx, id, models.ChecklistStatusDraft)
}

func (c *Checklist) setStatus(ctx context.Context, id string, status models.ChecklistStatus) (*models.Checklist, error) {
	checklist, err := c.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	checklist.Status = status

	err = c.persistence.ChecklistRepository().Save(ctx, checklist)
	if err != nil {
		return nil, fmt.Errorf("failed to update checklist status: %w", err)
	}

	return checklist, nil
}

// Delete removes a checklist together with its items and sessions.
func (c *Checklist) Delete(ctx context.Context, id string) error {
	err := c.persistence.ChecklistRepository().Delete(ctx, id)
	if err != nil {
		return err
	}

	return nil
}
