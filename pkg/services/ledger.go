package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// RecordInput carries one validation outcome to append to a session's ledger.
type RecordInput struct {
	Target        models.ValidationTarget
	Status        models.ValidationStatus
	ActualResult  string
	Notes         string
	ValidatorName string
}

// Summary aggregates the latest outcome per item for one phase.
type Summary struct {
	Phase      models.ValidationPhase `json:"phase"`
	TotalItems int                    `json:"total_items"`
	Validated  int                    `json:"validated"`
	Pass       int                    `json:"pass"`
	Fail       int                    `json:"fail"`
	Skip       int                    `json:"skip"`
	Blocked    int                    `json:"blocked"`
}

// Complete reports whether every item in the phase has at least one outcome.
func (s *Summary) Complete() bool {
	return s.Validated == s.TotalItems
}

// Ledger appends validation outcomes and answers latest-wins queries over
// them. Records are never updated in place: re-validating an item appends a
// new entry and the newest one becomes the item's effective outcome.
type Ledger struct {
	persistence persistence.Persistence
}

// NewLedger creates a new ledger service.
func NewLedger(persistence persistence.Persistence) *Ledger {
	return &Ledger{persistence: persistence}
}

// Record appends a validation outcome for an item in the session's current
// phase. The target must resolve to an item belonging to the session, and
// the phase gate rejects records for phases the session has moved past or
// not yet reached.
func (l *Ledger) Record(ctx context.Context, sessionID string, phase models.ValidationPhase, input RecordInput) (*models.Validation, error) {
	if !phase.Valid() {
		return nil, ErrInvalidPhase
	}

	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	session, err := l.fetchSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := l.checkPhaseGate(session, phase); err != nil {
		return nil, err
	}

	if err := l.checkTarget(ctx, session, phase, input.Target); err != nil {
		return nil, err
	}

	validation := &models.Validation{
		SessionID:     sessionID,
		Phase:         phase,
		Target:        input.Target,
		ValidatedAt:   time.Now().UTC(),
		Status:        input.Status,
		ActualResult:  input.ActualResult,
		Notes:         input.Notes,
		ValidatorName: input.ValidatorName,
	}

	err = l.persistence.ValidationRepository().Save(ctx, validation)
	if err != nil {
		return nil, fmt.Errorf("failed to record validation: %w", err)
	}

	return validation, nil
}

// ListBySession returns every validation for the session in the order it
// was recorded.
func (l *Ledger) ListBySession(ctx context.Context, sessionID string) ([]*models.Validation, error) {
	if _, err := l.fetchSession(ctx, sessionID); err != nil {
		return nil, err
	}

	validations, err := l.persistence.ValidationRepository().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}

	return validations, nil
}

// LatestPerItem reduces a phase's validations to the newest entry per item,
// keyed by the target's key.
func (l *Ledger) LatestPerItem(ctx context.Context, sessionID string, phase models.ValidationPhase) (map[string]*models.Validation, error) {
	validations, err := l.persistence.ValidationRepository().ListBySessionPhase(ctx, sessionID, phase)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}

	// Entries arrive oldest first, so later writes overwrite earlier ones.
	latest := make(map[string]*models.Validation, len(validations))
	for _, validation := range validations {
		latest[validation.Target.Key()] = validation
	}

	return latest, nil
}

// Summarize counts the latest outcomes per item for one phase of a session.
func (l *Ledger) Summarize(ctx context.Context, sessionID string, phase models.ValidationPhase) (*Summary, error) {
	session, err := l.fetchSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !phase.Valid() {
		return nil, ErrInvalidPhase
	}

	targets, err := l.phaseTargets(ctx, session, phase)
	if err != nil {
		return nil, err
	}

	latest, err := l.LatestPerItem(ctx, sessionID, phase)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Phase: phase, TotalItems: len(targets)}

	for _, target := range targets {
		validation, ok := latest[target.Key()]
		if !ok {
			continue
		}

		summary.Validated++

		switch validation.Status {
		case models.StatusPass:
			summary.Pass++
		case models.StatusFail:
			summary.Fail++
		case models.StatusSkip:
			summary.Skip++
		case models.StatusBlocked:
			summary.Blocked++
		}
	}

	return summary, nil
}

// missingOrdinals returns the ordinals of phase items with no outcome yet,
// sorted ascending. Used by phase completion to explain what is left.
func (l *Ledger) missingOrdinals(ctx context.Context, session *models.Session, phase models.ValidationPhase) ([]int, error) {
	targets, err := l.phaseTargets(ctx, session, phase)
	if err != nil {
		return nil, err
	}

	latest, err := l.LatestPerItem(ctx, session.ID, phase)
	if err != nil {
		return nil, err
	}

	var missing []int

	for _, target := range targets {
		if _, ok := latest[target.target.Key()]; !ok {
			missing = append(missing, target.ordinal)
		}
	}

	return missing, nil
}

// phaseTarget pairs a validation target with the item's ordinal so callers
// can report gaps in checklist order.
type phaseTarget struct {
	target  models.ValidationTarget
	ordinal int
}

func (p phaseTarget) Key() string { return p.target.Key() }

// phaseTargets lists the items a phase covers: phase 1 covers the base
// checklist items, phase 2 covers those plus the session's own items.
func (l *Ledger) phaseTargets(ctx context.Context, session *models.Session, phase models.ValidationPhase) ([]phaseTarget, error) {
	baseItems, err := l.persistence.ChecklistRepository().ListItems(ctx, session.ChecklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}

	targets := make([]phaseTarget, 0, len(baseItems))
	for _, item := range baseItems {
		targets = append(targets, phaseTarget{
			target:  models.ValidationTarget{Kind: models.TargetChecklistItem, ItemID: item.ID},
			ordinal: item.Ordinal,
		})
	}

	if phase == models.Phase2 {
		phase2Items, err := l.persistence.Phase2ItemRepository().ListBySession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list session items: %w", err)
		}

		for _, item := range phase2Items {
			targets = append(targets, phaseTarget{
				target:  models.ValidationTarget{Kind: models.TargetPhase2Item, ItemID: item.ID},
				ordinal: item.Ordinal,
			})
		}
	}

	return targets, nil
}

// checkPhaseGate rejects records for a phase the session is not currently
// in. Completed sessions accept no further records.
func (l *Ledger) checkPhaseGate(session *models.Session, phase models.ValidationPhase) error {
	switch phase {
	case models.Phase1:
		if session.CurrentPhase != models.SessionPhase1 {
			return ErrPhaseOrder
		}
	case models.Phase2:
		if session.CurrentPhase != models.SessionPhase2 {
			return ErrPhaseOrder
		}
	}

	return nil
}

// checkTarget verifies the target names an item the session can validate in
// the given phase.
func (l *Ledger) checkTarget(ctx context.Context, session *models.Session, phase models.ValidationPhase, target models.ValidationTarget) error {
	if target.ItemID == "" {
		return ErrInvalidTarget
	}

	switch target.Kind {
	case models.TargetChecklistItem:
		items, err := l.persistence.ChecklistRepository().ListItems(ctx, session.ChecklistID)
		if err != nil {
			return fmt.Errorf("failed to list checklist items: %w", err)
		}

		for _, item := range items {
			if item.ID == target.ItemID {
				return nil
			}
		}

		return ErrInvalidTarget
	case models.TargetPhase2Item:
		if phase != models.Phase2 {
			return ErrInvalidTarget
		}

		item, err := l.persistence.Phase2ItemRepository().GetByID(ctx, target.ItemID)
		if err != nil {
			return fmt.Errorf("failed to fetch session item: %w", err)
		}

		if item == nil || item.SessionID != session.ID {
			return ErrInvalidTarget
		}

		return nil
	default:
		return ErrInvalidTarget
	}
}

func (l *Ledger) fetchSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := l.persistence.SessionRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session == nil {
		return nil, ErrSessionNotFound
	}

	return session, nil
}
