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

// SessionRepository handles review-session database operations. Phase
// transitions are single conditional UPDATEs guarded on the current phase
// columns, so concurrent transitions on the same session cannot both win.
type SessionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(db *sql.DB, logger *slog.Logger) *SessionRepository {
	return &SessionRepository{db: db, logger: logger}
}

const sessionColumns = `
		id
	  , checklist_id
	  , name
	  , current_phase
	  , created_at
	  , completed_at
	  , phase1_started_at
	  , phase1_completed_at
	  , phase1_completed_by
	  , phase2_started_at
	  , phase2_completed_at
	  , phase2_completed_by
`

// GetByID returns a session by its ID, or (nil, nil) when absent.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM qa_sessions WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	session, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan session: %w", err)
	}

	return session, nil
}

// ListByChecklist returns the checklist's sessions, newest first.
func (r *SessionRepository) ListByChecklist(ctx context.Context, checklistID string) ([]*models.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM qa_sessions WHERE checklist_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	sessions := make([]*models.Session, 0)

	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sessions: %w", err)
	}

	return sessions, nil
}

// Save inserts or updates a session's base fields. Phase transitions go
// through the MarkPhase* operations instead.
func (r *SessionRepository) Save(ctx context.Context, session *models.Session) error {
	if session.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate session ID: %w", err)
		}

		session.ID = id.String()
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO qa_sessions (id, checklist_id, name, current_phase, created_at, completed_at,
			phase1_started_at, phase1_completed_at, phase1_completed_by,
			phase2_started_at, phase2_completed_at, phase2_completed_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name
	`

	_, err := r.db.ExecContext(ctx, query,
		session.ID,
		session.ChecklistID,
		session.Name,
		session.CurrentPhase,
		session.CreatedAt,
		session.CompletedAt,
		session.Phase1StartedAt,
		session.Phase1CompletedAt,
		nullableString(session.Phase1CompletedBy),
		session.Phase2StartedAt,
		session.Phase2CompletedAt,
		nullableString(session.Phase2CompletedBy),
	)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// Delete removes a session; validations and phase-2 items go with it via
// ON DELETE CASCADE.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM qa_sessions WHERE id = $1", id)
	if err != nil {
		return persistence.NewSessionError("Delete", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewSessionError("Delete", id, persistence.ErrSessionNotFound)
	}

	return nil
}

// MarkPhase1Completed records the phase-1 sign-off. The session stays in
// phase1; only an explicit MarkPhase2Started advances it.
func (r *SessionRepository) MarkPhase1Completed(ctx context.Context, sessionID, completedBy string, at time.Time) error {
	query := `
		UPDATE qa_sessions
		SET phase1_completed_at = $2, phase1_completed_by = $3
		WHERE id = $1 AND current_phase = 'phase1' AND phase1_completed_at IS NULL
	`

	return r.guardedUpdate(ctx, "MarkPhase1Completed", sessionID, query, sessionID, at, completedBy)
}

// MarkPhase2Started advances the session to phase2. A session already in
// phase2 is left untouched; the caller treats that as an idempotent success.
func (r *SessionRepository) MarkPhase2Started(ctx context.Context, sessionID string, at time.Time) error {
	query := `
		UPDATE qa_sessions
		SET current_phase = 'phase2', phase2_started_at = $2
		WHERE id = $1 AND current_phase = 'phase1' AND phase1_completed_at IS NOT NULL
	`

	return r.guardedUpdate(ctx, "MarkPhase2Started", sessionID, query, sessionID, at)
}

// MarkPhase2Completed records the phase-2 sign-off and moves the session to
// its terminal state.
func (r *SessionRepository) MarkPhase2Completed(ctx context.Context, sessionID, completedBy string, at time.Time) error {
	query := `
		UPDATE qa_sessions
		SET current_phase = 'completed', phase2_completed_at = $2, phase2_completed_by = $3, completed_at = $2
		WHERE id = $1 AND current_phase = 'phase2' AND phase2_completed_at IS NULL
	`

	return r.guardedUpdate(ctx, "MarkPhase2Completed", sessionID, query, sessionID, at, completedBy)
}

func (r *SessionRepository) guardedUpdate(ctx context.Context, op, sessionID, query string, args ...any) error {
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return persistence.NewSessionError(op, sessionID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return persistence.NewSessionError(op, sessionID, persistence.ErrPhaseConflict)
	}

	return nil
}

func scanSession(scanner interface {
	Scan(dest ...any) error
}) (*models.Session, error) {
	var (
		session            models.Session
		phase1By, phase2By sql.NullString
	)

	err := scanner.Scan(
		&session.ID,
		&session.ChecklistID,
		&session.Name,
		&session.CurrentPhase,
		&session.CreatedAt,
		&session.CompletedAt,
		&session.Phase1StartedAt,
		&session.Phase1CompletedAt,
		&phase1By,
		&session.Phase2StartedAt,
		&session.Phase2CompletedAt,
		&phase2By,
	)
	if err != nil {
		return nil, err
	}

	session.Phase1CompletedBy = phase1By.String
	session.Phase2CompletedBy = phase2By.String

	return &session, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}

	return s
}
