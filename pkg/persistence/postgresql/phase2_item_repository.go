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
)

// Phase2ItemRepository handles session-scoped supplementary item operations.
type Phase2ItemRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPhase2ItemRepository creates a new phase-2 item repository.
func NewPhase2ItemRepository(db *sql.DB, logger *slog.Logger) *Phase2ItemRepository {
	return &Phase2ItemRepository{db: db, logger: logger}
}

const phase2ItemColumns = `
		id
	  , session_id
	  , ordinal
	  , category
	  , description
	  , expected_result
	  , notes
	  , provenance
	  , template_id
	  , created_at
`

// GetByID returns a phase-2 item by its ID, or (nil, nil) when absent.
func (r *Phase2ItemRepository) GetByID(ctx context.Context, id string) (*models.Phase2Item, error) {
	query := `SELECT ` + phase2ItemColumns + ` FROM qa_phase2_items WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	item, err := scanPhase2Item(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan phase-2 item: %w", err)
	}

	return item, nil
}

// ListBySession returns the session's phase-2 items in ordinal order.
func (r *Phase2ItemRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.Phase2Item, error) {
	query := `SELECT ` + phase2ItemColumns + ` FROM qa_phase2_items WHERE session_id = $1 ORDER BY ordinal`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query phase-2 items: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	items := make([]*models.Phase2Item, 0)

	for rows.Next() {
		item, err := scanPhase2Item(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan phase-2 item: %w", err)
		}

		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating phase-2 items: %w", err)
	}

	return items, nil
}

// Save inserts a single phase-2 item.
func (r *Phase2ItemRepository) Save(ctx context.Context, item *models.Phase2Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = savePhase2ItemTx(ctx, tx, item)
	if err != nil {
		_ = tx.Rollback()

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// SaveAll inserts the items in one transaction; either every item is written
// or none is.
func (r *Phase2ItemRepository) SaveAll(ctx context.Context, items []*models.Phase2Item) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, item := range items {
		err := savePhase2ItemTx(ctx, tx, item)
		if err != nil {
			_ = tx.Rollback()

			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func savePhase2ItemTx(ctx context.Context, tx *sql.Tx, item *models.Phase2Item) error {
	if item.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate phase-2 item ID: %w", err)
		}

		item.ID = id.String()
	}

	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO qa_phase2_items (id, session_id, ordinal, category, description, expected_result, notes, provenance, template_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.ExecContext(ctx, query,
		item.ID,
		item.SessionID,
		item.Ordinal,
		item.Category,
		item.Description,
		item.ExpectedResult,
		item.Notes,
		item.Provenance,
		item.TemplateID,
		item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save phase-2 item: %w", err)
	}

	return nil
}

func scanPhase2Item(scanner interface {
	Scan(dest ...any) error
}) (*models.Phase2Item, error) {
	var (
		item                            models.Phase2Item
		category, expectedResult, notes sql.NullString
	)

	err := scanner.Scan(
		&item.ID,
		&item.SessionID,
		&item.Ordinal,
		&category,
		&item.Description,
		&expectedResult,
		&notes,
		&item.Provenance,
		&item.TemplateID,
		&item.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	item.Category = category.String
	item.ExpectedResult = expectedResult.String
	item.Notes = notes.String

	return &item, nil
}
