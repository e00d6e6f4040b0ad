package file

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// ChecklistRepository handles checklist-related file operations.
type ChecklistRepository struct {
	root     string
	mu       *sync.Mutex
	sessions *SessionRepository
}

// NewChecklistRepository creates a new checklist repository.
func NewChecklistRepository(root string, mu *sync.Mutex, sessions *SessionRepository) *ChecklistRepository {
	return &ChecklistRepository{root: root, mu: mu, sessions: sessions}
}

func (r *ChecklistRepository) checklistsDir() string {
	return filepath.Join(r.root, "checklists")
}

func (r *ChecklistRepository) itemsDir() string {
	return filepath.Join(r.root, "checklist_items")
}

// ListChecklists returns checklists ordered by most recently updated.
func (r *ChecklistRepository) ListChecklists(_ context.Context, opts persistence.ListChecklistsOptions) ([]*models.Checklist, error) {
	checklists := make([]*models.Checklist, 0)

	err := readAll(r.checklistsDir(), func(data []byte) error {
		var checklist models.Checklist
		if err := json.Unmarshal(data, &checklist); err != nil {
			return err
		}

		if opts.PublishedOnly && !checklist.IsPublished() {
			return nil
		}

		checklists = append(checklists, &checklist)

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(checklists, func(i, j int) bool {
		return checklists[i].UpdatedAt.After(checklists[j].UpdatedAt)
	})

	return checklists, nil
}

// GetByID returns a checklist by its ID, or (nil, nil) when absent.
func (r *ChecklistRepository) GetByID(_ context.Context, id string) (*models.Checklist, error) {
	var checklist models.Checklist

	found, err := readDocument(r.checklistsDir(), id, &checklist)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &checklist, nil
}

// Save inserts or updates a checklist.
func (r *ChecklistRepository) Save(_ context.Context, checklist *models.Checklist) error {
	now := time.Now().UTC()

	if checklist.CreatedAt.IsZero() {
		checklist.CreatedAt = now
	}

	checklist.UpdatedAt = now

	if checklist.ID == "" {
		checklist.ID = uuid.New().String()
	}

	return writeDocument(r.checklistsDir(), checklist.ID, checklist)
}

// Delete removes a checklist and cascades through its dependents explicitly:
// session dependents first, then sessions, then items, then the checklist.
func (r *ChecklistRepository) Delete(ctx context.Context, id string) error {
	checklist, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if checklist == nil {
		return persistence.ErrChecklistNotFound
	}

	sessions, err := r.sessions.ListByChecklist(ctx, id)
	if err != nil {
		return err
	}

	for _, session := range sessions {
		err := r.sessions.Delete(ctx, session.ID)
		if err != nil {
			return fmt.Errorf("failed to cascade to session %s: %w", session.ID, err)
		}
	}

	items, err := r.ListItems(ctx, id)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := removeDocument(r.itemsDir(), item.ID)
		if err != nil {
			return err
		}
	}

	return removeDocument(r.checklistsDir(), id)
}

// SaveItem inserts a checklist item.
func (r *ChecklistRepository) SaveItem(_ context.Context, item *models.ChecklistItem) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	return writeDocument(r.itemsDir(), item.ID, item)
}

// ListItems returns the checklist's items in ordinal order.
func (r *ChecklistRepository) ListItems(_ context.Context, checklistID string) ([]*models.ChecklistItem, error) {
	items := make([]*models.ChecklistItem, 0)

	err := readAll(r.itemsDir(), func(data []byte) error {
		var item models.ChecklistItem
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}

		if item.ChecklistID == checklistID {
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
