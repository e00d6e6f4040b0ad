package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// Session drives review sessions through the two-phase workflow. A session
// starts in phase 1, advances to phase 2 only after phase 1 is complete,
// and finishes once phase 2 is complete. Phases never move backwards.
type Session struct {
	persistence persistence.Persistence
	ledger      *Ledger
}

// NewSession creates a new session service.
func NewSession(persistence persistence.Persistence) *Session {
	return &Session{
		persistence: persistence,
		ledger:      NewLedger(persistence),
	}
}

// Create starts a new review session against a published checklist.
func (s *Session) Create(ctx context.Context, checklistID, name string) (*models.Session, error) {
	checklist, err := s.persistence.ChecklistRepository().GetByID(ctx, checklistID)
	if err != nil {
		return nil, err
	}

	if checklist == nil {
		return nil, ErrChecklistNotFound
	}

	if !checklist.IsPublished() {
		return nil, ErrChecklistNotPublished
	}

	now := time.Now().UTC()
	session := &models.Session{
		ChecklistID:     checklistID,
		Name:            name,
		CurrentPhase:    models.SessionPhase1,
		Phase1StartedAt: &now,
	}

	err = s.persistence.SessionRepository().Save(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// FetchByID retrieves a session by its ID.
func (s *Session) FetchByID(ctx context.Context, id string) (*models.Session, error) {
	session, err := s.persistence.SessionRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if session == nil {
		return nil, ErrSessionNotFound
	}

	return session, nil
}

// ListByChecklist returns the sessions created against a checklist.
func (s *Session) ListByChecklist(ctx context.Context, checklistID string) ([]*models.Session, error) {
	sessions, err := s.persistence.SessionRepository().ListByChecklist(ctx, checklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	return sessions, nil
}

// CompletePhase1 marks phase 1 done once every checklist item has an
// outcome. It does not advance the session: phase 2 starts separately.
func (s *Session) CompletePhase1(ctx context.Context, sessionID, completedBy string) (*models.Session, error) {
	session, err := s.FetchByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.CurrentPhase != models.SessionPhase1 {
		return nil, ErrPhaseOrder
	}

	if session.Phase1Completed() {
		return session, nil
	}

	missing, err := s.ledger.missingOrdinals(ctx, session, models.Phase1)
	if err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		return nil, &IncompleteValidationError{Phase: models.Phase1, MissingOrdinals: missing}
	}

	err = s.persistence.SessionRepository().MarkPhase1Completed(ctx, sessionID, completedBy, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return s.FetchByID(ctx, sessionID)
}

// StartPhase2 advances a session whose phase 1 is complete into phase 2.
// Calling it on a session already in phase 2 is a no-op success.
func (s *Session) StartPhase2(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := s.FetchByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.CurrentPhase == models.SessionPhase2 {
		return session, nil
	}

	if session.CurrentPhase == models.SessionPhaseCompleted {
		return nil, ErrPhaseOrder
	}

	if !session.Phase1Completed() {
		return nil, ErrPhaseOrder
	}

	err = s.persistence.SessionRepository().MarkPhase2Started(ctx, sessionID, time.Now().UTC())
	if err != nil {
		// A concurrent caller may have won the transition; if the session
		// is in phase 2 now, this call still succeeded.
		if errors.Is(err, persistence.ErrPhaseConflict) {
			current, fetchErr := s.FetchByID(ctx, sessionID)
			if fetchErr == nil && current.CurrentPhase == models.SessionPhase2 {
				return current, nil
			}
		}

		return nil, err
	}

	return s.FetchByID(ctx, sessionID)
}

// CompletePhase2 finishes the session once every item in phase 2 scope,
// base checklist items plus the session's own items, has an outcome.
func (s *Session) CompletePhase2(ctx context.Context, sessionID, completedBy string) (*models.Session, error) {
	session, err := s.FetchByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.CurrentPhase != models.SessionPhase2 {
		return nil, ErrPhaseOrder
	}

	missing, err := s.ledger.missingOrdinals(ctx, session, models.Phase2)
	if err != nil {
		return nil, err
	}

	if len(missing) > 0 {
		return nil, &IncompleteValidationError{Phase: models.Phase2, MissingOrdinals: missing}
	}

	err = s.persistence.SessionRepository().MarkPhase2Completed(ctx, sessionID, completedBy, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return s.FetchByID(ctx, sessionID)
}

// Delete removes a session together with its validations and phase 2 items.
func (s *Session) Delete(ctx context.Context, sessionID string) error {
	return s.persistence.SessionRepository().Delete(ctx, sessionID)
}
