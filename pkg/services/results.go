package services

import (
	"context"
	"fmt"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// ItemResult pairs one in-scope item with its effective outcome, nil when
// the item has not been validated yet.
type ItemResult struct {
	Ordinal        int                     `json:"ordinal"`
	Target         models.ValidationTarget `json:"target"`
	Category       string                  `json:"category,omitempty"`
	Description    string                  `json:"description"`
	ExpectedResult string                  `json:"expected_result,omitempty"`
	Latest         *models.Validation      `json:"latest,omitempty"`
}

// PhaseResults is the full report for one phase: the summary plus every
// in-scope item with its latest outcome, in ordinal order.
type PhaseResults struct {
	SessionID string       `json:"session_id"`
	Summary   *Summary     `json:"summary"`
	Items     []ItemResult `json:"items"`
}

// TimelineEntry is one validation annotated with the description of the
// item it targeted.
type TimelineEntry struct {
	Validation      *models.Validation `json:"validation"`
	ItemDescription string             `json:"item_description"`
}

// Results builds read-only reports over a session's ledger: per-phase
// result tables and the full chronological timeline.
type Results struct {
	persistence persistence.Persistence
	ledger      *Ledger
}

// NewResults creates a new results service.
func NewResults(persistence persistence.Persistence) *Results {
	return &Results{
		persistence: persistence,
		ledger:      NewLedger(persistence),
	}
}

// PhaseResults reports one phase of a session: every item the phase covers
// together with its latest outcome.
func (r *Results) PhaseResults(ctx context.Context, sessionID string, phase models.ValidationPhase) (*PhaseResults, error) {
	session, err := r.fetchSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !phase.Valid() {
		return nil, ErrInvalidPhase
	}

	summary, err := r.ledger.Summarize(ctx, sessionID, phase)
	if err != nil {
		return nil, err
	}

	latest, err := r.ledger.LatestPerItem(ctx, sessionID, phase)
	if err != nil {
		return nil, err
	}

	items, err := r.scopedItems(ctx, session, phase)
	if err != nil {
		return nil, err
	}

	for i := range items {
		items[i].Latest = latest[items[i].Target.Key()]
	}

	return &PhaseResults{
		SessionID: sessionID,
		Summary:   summary,
		Items:     items,
	}, nil
}

// Timeline returns every validation of the session in the order it was
// recorded, annotated with the targeted item's description.
func (r *Results) Timeline(ctx context.Context, sessionID string) ([]TimelineEntry, error) {
	session, err := r.fetchSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	validations, err := r.persistence.ValidationRepository().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list validations: %w", err)
	}

	descriptions, err := r.itemDescriptions(ctx, session)
	if err != nil {
		return nil, err
	}

	timeline := make([]TimelineEntry, 0, len(validations))
	for _, validation := range validations {
		timeline = append(timeline, TimelineEntry{
			Validation:      validation,
			ItemDescription: descriptions[validation.Target.Key()],
		})
	}

	return timeline, nil
}

// scopedItems lists a phase's items in ordinal order. Phase 2 appends the
// session's own items after the base checklist.
func (r *Results) scopedItems(ctx context.Context, session *models.Session, phase models.ValidationPhase) ([]ItemResult, error) {
	baseItems, err := r.persistence.ChecklistRepository().ListItems(ctx, session.ChecklistID)
	if err != nil {
		return nil, fmt.Errorf("failed to list checklist items: %w", err)
	}

	items := make([]ItemResult, 0, len(baseItems))
	for _, item := range baseItems {
		items = append(items, ItemResult{
			Ordinal:        item.Ordinal,
			Target:         models.ValidationTarget{Kind: models.TargetChecklistItem, ItemID: item.ID},
			Category:       item.Category,
			Description:    item.Description,
			ExpectedResult: item.ExpectedResult,
		})
	}

	if phase == models.Phase2 {
		phase2Items, err := r.persistence.Phase2ItemRepository().ListBySession(ctx, session.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list session items: %w", err)
		}

		for _, item := range phase2Items {
			items = append(items, ItemResult{
				Ordinal:        item.Ordinal,
				Target:         models.ValidationTarget{Kind: models.TargetPhase2Item, ItemID: item.ID},
				Category:       item.Category,
				Description:    item.Description,
				ExpectedResult: item.ExpectedResult,
			})
		}
	}

	return items, nil
}

// itemDescriptions maps every known target of the session to the item's
// description text.
func (r *Results) itemDescriptions(ctx context.Context, session *models.Session) (map[string]string, error) {
	items, err := r.scopedItems(ctx, session, models.Phase2)
	if err != nil {
		return nil, err
	}

	descriptions := make(map[string]string, len(items))
	for _, item := range items {
		descriptions[item.Target.Key()] = item.Description
	}

	return descriptions, nil
}

func (r *Results) fetchSession(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := r.persistence.SessionRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session == nil {
		return nil, ErrSessionNotFound
	}

	return session, nil
}
