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

// TemplateRepository handles reusable-template database operations.
type TemplateRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewTemplateRepository creates a new template repository.
func NewTemplateRepository(db *sql.DB, logger *slog.Logger) *TemplateRepository {
	return &TemplateRepository{db: db, logger: logger}
}

// ListTemplates returns templates in name order, optionally filtered.
func (r *TemplateRepository) ListTemplates(ctx context.Context, opts persistence.ListTemplatesOptions) ([]*models.Template, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , category
		  , active
		  , created_at
		  , updated_at
		FROM qa_templates
		WHERE 1 = 1
	`

	args := make([]any, 0, 1)

	if opts.ActiveOnly {
		query += ` AND active`
	}

	if opts.Category != "" {
		args = append(args, opts.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}

	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query templates: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	templates := make([]*models.Template, 0)

	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template: %w", err)
		}

		templates = append(templates, template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating templates: %w", err)
	}

	return templates, nil
}

// GetByID returns a template by its ID, or (nil, nil) when absent.
func (r *TemplateRepository) GetByID(ctx context.Context, id string) (*models.Template, error) {
	query := `
		SELECT
			id
		  , name
		  , description
		  , category
		  , active
		  , created_at
		  , updated_at
		FROM qa_templates
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)

	template, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan template: %w", err)
	}

	return template, nil
}

// Save inserts or updates a template.
func (r *TemplateRepository) Save(ctx context.Context, template *models.Template) error {
	now := time.Now().UTC()

	if template.CreatedAt.IsZero() {
		template.CreatedAt = now
	}

	template.UpdatedAt = now

	if template.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate template ID: %w", err)
		}

		template.ID = id.String()
	}

	query := `
		INSERT INTO qa_templates (id, name, description, category, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			active = EXCLUDED.active,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		template.ID,
		template.Name,
		template.Description,
		template.Category,
		template.Active,
		template.CreatedAt,
		template.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save template: %w", err)
	}

	return nil
}

// SaveItem inserts a template item and bumps the template's updated_at.
func (r *TemplateRepository) SaveItem(ctx context.Context, item *models.TemplateItem) error {
	if item.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate template item ID: %w", err)
		}

		item.ID = id.String()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	query := `
		INSERT INTO qa_template_items (id, template_id, ordinal, category, description, expected_result, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err = tx.ExecContext(ctx, query,
		item.ID,
		item.TemplateID,
		item.Ordinal,
		item.Category,
		item.Description,
		item.ExpectedResult,
		item.Notes,
	)
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("failed to save template item: %w", err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE qa_templates SET updated_at = $2 WHERE id = $1`, item.TemplateID, time.Now().UTC())
	if err != nil {
		_ = tx.Rollback()

		return fmt.Errorf("failed to touch template: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListItems returns the template's items in ordinal order.
func (r *TemplateRepository) ListItems(ctx context.Context, templateID string) ([]*models.TemplateItem, error) {
	query := `
		SELECT
			id
		  , template_id
		  , ordinal
		  , category
		  , description
		  , expected_result
		  , notes
		FROM qa_template_items
		WHERE template_id = $1
		ORDER BY ordinal
	`

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to query template items: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	items := make([]*models.TemplateItem, 0)

	for rows.Next() {
		var (
			item                            models.TemplateItem
			category, expectedResult, notes sql.NullString
		)

		err := rows.Scan(
			&item.ID,
			&item.TemplateID,
			&item.Ordinal,
			&category,
			&item.Description,
			&expectedResult,
			&notes,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan template item: %w", err)
		}

		item.Category = category.String
		item.ExpectedResult = expectedResult.String
		item.Notes = notes.String

		items = append(items, &item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating template items: %w", err)
	}

	return items, nil
}

func scanTemplate(scanner interface {
	Scan(dest ...any) error
}) (*models.Template, error) {
	var (
		template              models.Template
		description, category sql.NullString
	)

	err := scanner.Scan(
		&template.ID,
		&template.Name,
		&description,
		&category,
		&template.Active,
		&template.CreatedAt,
		&template.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	template.Description = description.String
	template.Category = category.String

	return &template, nil
}
