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
)

// Phase2ItemRepository handles session-scoped supplementary item file operations.
type Phase2ItemRepository struct {
	root string
	mu   *sync.Mutex
}

// NewPhase2ItemRepository creates a new phase-2 item repository.
func NewPhase2ItemRepository(root string, mu *sync.Mutex) *Phase2ItemRepository {
	return &Phase2ItemRepository{root: root, mu: mu}
}

func (r *Phase2ItemRepository) dir() string {
	return filepath.Join(r.root, "phase2_items")
}

// GetByID returns a phase-2 item by its ID, or (nil, nil) when absent.
func (r *Phase2ItemRepository) GetByID(_ context.Context, id string) (*models.Phase2Item, error) {
	var item models.Phase2Item

	found, err := readDocument(r.dir(), id, &item)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &item, nil
}

// ListBySession returns the session's phase-2 items in ordinal order.
func (r *Phase2ItemRepository) ListBySession(_ context.Context, sessionID string) ([]*models.Phase2Item, error) {
	items := make([]*models.Phase2Item, 0)

	err := readAll(r.dir(), func(data []byte) error {
		var item models.Phase2Item
		if err := json.Unmarshal(data, &item); err != nil {
			return err
		}

		if item.SessionID == sessionID {
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

// Save inserts a single phase-2 item.
func (r *Phase2ItemRepository) Save(_ context.Context, item *models.Phase2Item) error {
	prepare(item)

	return writeDocument(r.dir(), item.ID, item)
}

// SaveAll persists the items as one unit. Writes that fail midway are rolled
// back by removing the documents already written, so a failed import leaves
// nothing behind.
func (r *Phase2ItemRepository) SaveAll(_ context.Context, items []*models.Phase2Item) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	written := make([]string, 0, len(items))

	for _, item := range items {
		prepare(item)

		err := writeDocument(r.dir(), item.ID, item)
		if err != nil {
			for _, id := range written {
				_ = removeDocument(r.dir(), id)
			}

			return err
		}

		written = append(written, item.ID)
	}

	return nil
}

func (r *Phase2ItemRepository) deleteBySession(ctx context.Context, sessionID string) error {
	items, err := r.ListBySession(ctx, sessionID)
	if err != nil {
		return err
	}

	for _, item := range items {
		err := removeDocument(r.dir(), item.ID)
		if err != nil {
			return err
		}
	}

	return nil
}

func prepare(item *models.Phase2Item) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
}
