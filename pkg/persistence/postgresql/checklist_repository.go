package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// ChecklistRepository handles checklist-related database operations.
type ChecklistRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewChecklistRepository creates a new checklist repository.
func NewChecklistRepository(db *sql.DB, logger *slog.Logger) *ChecklistRepository {
	return &ChecklistRepository{db: db, logger: logger}
}

// ListChecklists returns checklists ordered by most recently updated.
func (r *ChecklistRepository) ListChecklists(ctx context.Context, opts persistence.ListChecklistsOptions) ([]*models.Checklist, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , status
		  , created_at
		  , updated_at
		FROM qa_checklists
	`
	if opts.PublishedOnly {
		query += ` WHERE status = 'published'`
	}

	query += ` ORDER BY updated_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklists: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	checklists := make([]*models.Checklist, 0)

	for rows.Next() {
		checklist, err := scanChecklist(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist: %w", err)
		}

		checklists = append(checklists, checklist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklists: %w", err)
	}

	return checklists, nil
}

// GetByID returns a checklist by its ID, or (nil, nil) when absent.
func (r *ChecklistRepository) GetByID(ctx context.Context, id string) (*models.Checklist, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , status
		  , created_at
		  , updated_at
		FROM qa_checklists
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	checklist, err := scanChecklist(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan checklist: %w", err)
	}

	return checklist, nil
}

// Save inserts or updates a checklist.
func (r *ChecklistRepository) Save(ctx context.Context, checklist *models.Checklist) error {
	now := time.Now().UTC()

	if checklist.CreatedAt.IsZero() {
		checklist.CreatedAt = now
	}

	checklist.UpdatedAt = now

	if checklist.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate checklist ID: %w", err)
		}

		checklist.ID = id.String()
	}

	query := `
		INSERT INTO qa_checklists (id, name, description, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		checklist.ID,
		checklist.Name,
		checklist.Description,
		checklist.Status,
		checklist.CreatedAt,
		checklist.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save checklist: %w", err)
	}

	return nil
}

// Delete removes a checklist; items, sessions, and session dependents go with
// it via ON DELETE CASCADE.
func (r *ChecklistRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM qa_checklists WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete checklist: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.ErrChecklistNotFound
	}

	return nil
}

// SaveItem inserts a checklist item.
func (r *ChecklistRepository) SaveItem(ctx context.Context, item *models.ChecklistItem) error {
	if item.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate item ID: %w", err)
		}

		item.ID = id.String()
	}

	query := `
		INSERT INTO qa_checklist_items (id, checklist_id, ordinal, category, description, expected_result, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := r.db.ExecContext(ctx, query,
		item.ID,
		item.ChecklistID,
		item.Ordinal,
		item.Category,
		item.Description,
		item.ExpectedResult,
		item.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to save checklist item: %w", err)
	}

	return nil
}

// ListItems returns the checklist's items in ordinal order.
func (r *ChecklistRepository) ListItems(ctx context.Context, checklistID string) ([]*models.ChecklistItem, error) {
	query := `
		SELECT
			id
		  , checklist_id
		  , ordinal
		  , category
		  , description
		  , expected_result
		  , notes
		FROM qa_checklist_items
		WHERE checklist_id = $1
		ORDER BY ordinal
	`

	rows, err := r.db.QueryContext(ctx, query, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query checklist items: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	items := make([]*models.ChecklistItem, 0)

	for rows.Next() {
		var (
			item                            models.ChecklistItem
			category, expectedResult, notes sql.NullString
		)

		err := rows.Scan(
			&item.ID,
			&item.ChecklistID,
			&item.Ordinal,
			&category,
			&item.Description,
			&expectedResult,
			&notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checklist item: %w", err)
		}

		item.Category = category.String
		item.ExpectedResult = expectedResult.String
		item.Notes = notes.String

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checklist items: %w", err)
	}

	return items, nil
}

func scanChecklist(scanner interface {
	Scan(dest ...any) error
}) (*models.Checklist, error) {
	var (
		checklist   models.Checklist
		description sql.NullString
	)

	err := scanner.Scan(
		&checklist.ID,
		&checklist.Name,
		&description,
		&checklist.Status,
		&checklist.CreatedAt,
		&checklist.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	checklist.Description = description.String

	return &checklist, nil
}
