package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/rpmcdougall/qa-tracker/pkg/models"
)

// ValidationRepository handles the append-only validation ledger. Rows are
// never updated or deleted individually; removal happens only through the
// session cascade.
type ValidationRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewValidationRepository creates a new validation repository.
func NewValidationRepository(db *sql.DB, logger *slog.Logger) *ValidationRepository {
	return &ValidationRepository{db: db, logger: logger}
}

// Save appends a validation row.
func (r *ValidationRepository) Save(ctx context.Context, validation *models.Validation) error {
	if validation.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate validation ID: %w", err)
		}

		validation.ID = id.String()
	}

	if validation.ValidatedAt.IsZero() {
		validation.ValidatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO qa_validations (id, session_id, phase, target_kind, target_item_id, validated_at, status, actual_result, notes, validator_name)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		validation.ID,
		validation.SessionID,
		validation.Phase,
		validation.Target.Kind,
		validation.Target.ItemID,
		validation.ValidatedAt,
		validation.Status,
		validation.ActualResult,
		validation.Notes,
		validation.ValidatorName,
	)
	if err != nil {
		return fmt.Errorf("failed to save validation: %w", err)
	}

	return nil
}

// ListBySession returns every validation of the session, both phases, oldest
// first; the seq column breaks timestamp ties in insertion order.
func (r *ValidationRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.Validation, error) {
	query := validationSelect + ` WHERE session_id = $1 ORDER BY validated_at, seq`

	return r.queryValidations(ctx, query, sessionID)
}

// ListBySessionPhase is ListBySession restricted to one phase.
func (r *ValidationRepository) ListBySessionPhase(ctx context.Context, sessionID string, phase models.ValidationPhase) ([]*models.Validation, error) {
	query := validationSelect + ` WHERE session_id = $1 AND phase = $2 ORDER BY validated_at, seq`

	return r.queryValidations(ctx, query, sessionID, phase)
}

const validationSelect = `
	SELECT
		id
	  , session_id
	  , phase
	  , target_kind
	  , target_item_id
	  , validated_at
	  , status
	  , actual_result
	  , notes
	  , validator_name
	FROM qa_validations
`

func (r *ValidationRepository) queryValidations(ctx context.Context, query string, args ...any) ([]*models.Validation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query validations: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	validations := make([]*models.Validation, 0)

	for rows.Next() {
		var (
			validation                         models.Validation
			actualResult, notes, validatorName sql.NullString
		)

		err := rows.Scan(
			&validation.ID,
			&validation.SessionID,
			&validation.Phase,
			&validation.Target.Kind,
			&validation.Target.ItemID,
			&validation.ValidatedAt,
			&validation.Status,
			&actualResult,
			&notes,
			&validatorName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan validation: %w", err)
		}

		validation.ActualResult = actualResult.String
		validation.Notes = notes.String
		validation.ValidatorName = validatorName.String

		validations = append(validations, &validation)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validations: %w", err)
	}

	return validations, nil
}
