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

// SessionRepository handles review-session file operations. The shared mutex
// makes each phase transition a read-check-write critical section, mirroring
// the guarded UPDATEs of the SQL implementation.
type SessionRepository struct {
	root        string
	mu          *sync.Mutex
	validations *ValidationRepository
	phase2Items *Phase2ItemRepository
}

// NewSessionRepository creates a new session repository.
func NewSessionRepository(root string, mu *sync.Mutex, validations *ValidationRepository, phase2Items *Phase2ItemRepository) *SessionRepository {
	return &SessionRepository{root: root, mu: mu, validations: validations, phase2Items: phase2Items}
}

func (r *SessionRepository) dir() string {
	return filepath.Join(r.root, "sessions")
}

// GetByID returns a session by its ID, or (nil, nil) when absent.
func (r *SessionRepository) GetByID(_ context.Context, id string) (*models.Session, error) {
	var session models.Session

	found, err := readDocument(r.dir(), id, &session)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, nil
	}

	return &session, nil
}

// ListByChecklist returns the checklist's sessions, newest first.
func (r *SessionRepository) ListByChecklist(_ context.Context, checklistID string) ([]*models.Session, error) {
	sessions := make([]*models.Session, 0)

	err := readAll(r.dir(), func(data []byte) error {
		var session models.Session
		if err := json.Unmarshal(data, &session); err != nil {
			return err
		}

		if session.ChecklistID == checklistID {
			sessions = append(sessions, &session)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})

	return sessions, nil
}

// Save inserts or updates a session's base fields.
func (r *SessionRepository) Save(_ context.Context, session *models.Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}

	return writeDocument(r.dir(), session.ID, session)
}

// Delete removes a session and cascades to its validations and phase-2 items.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	session, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if session == nil {
		return persistence.NewSessionError("Delete", id, persistence.ErrSessionNotFound)
	}

	err = r.validations.deleteBySession(id)
	if err != nil {
		return fmt.Errorf("failed to cascade to validations: %w", err)
	}

	err = r.phase2Items.deleteBySession(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to cascade to phase-2 items: %w", err)
	}

	return removeDocument(r.dir(), id)
}

// MarkPhase1Completed records the phase-1 sign-off.
func (r *SessionRepository) MarkPhase1Completed(ctx context.Context, sessionID, completedBy string, at time.Time) error {
	return r.transition(ctx, "MarkPhase1Completed", sessionID, func(session *models.Session) bool {
		if session.CurrentPhase != models.SessionPhase1 || session.Phase1Completed() {
			return false
		}

		session.Phase1CompletedAt = &at
		session.Phase1CompletedBy = completedBy

		return true
	})
}

// MarkPhase2Started advances the session to phase2.
func (r *SessionRepository) MarkPhase2Started(ctx context.Context, sessionID string, at time.Time) error {
	return r.transition(ctx, "MarkPhase2Started", sessionID, func(session *models.Session) bool {
		if session.CurrentPhase != models.SessionPhase1 || !session.Phase1Completed() {
			return false
		}

		session.CurrentPhase = models.SessionPhase2
		session.Phase2StartedAt = &at

		return true
	})
}

// MarkPhase2Completed records the phase-2 sign-off and completes the session.
func (r *SessionRepository) MarkPhase2Completed(ctx context.Context, sessionID, completedBy string, at time.Time) error {
	return r.transition(ctx, "MarkPhase2Completed", sessionID, func(session *models.Session) bool {
		if session.CurrentPhase != models.SessionPhase2 || session.Phase2Completed() {
			return false
		}

		session.CurrentPhase = models.SessionPhaseCompleted
		session.Phase2CompletedAt = &at
		session.Phase2CompletedBy = completedBy
		session.CompletedAt = &at

		return true
	})
}

// transition applies a guarded mutation under the store mutex. The apply
// callback returns false when the session is not in the expected phase.
func (r *SessionRepository) transition(ctx context.Context, op, sessionID string, apply func(*models.Session) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	session, err := r.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}

	if session == nil {
		return persistence.NewSessionError(op, sessionID, persistence.ErrSessionNotFound)
	}

	if !apply(session) {
		return persistence.NewSessionError(op, sessionID, persistence.ErrPhaseConflict)
	}

	return writeDocument(r.dir(), session.ID, session)
}
