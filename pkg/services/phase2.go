package services

import (
	"context"
	"fmt"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// Phase2 manages the extra items a session picks up for its second pass.
// Items can be added one at a time or imported in bulk from a template;
// either way they only exist while the session is in phase 2.
type Phase2 struct {
	persistence persistence.Persistence
}

// NewPhase2 creates a new phase 2 item service.
func NewPhase2(persistence persistence.Persistence) *Phase2 {
	return &Phase2{persistence: persistence}
}

// AddManual appends one hand-written item to a session in phase 2. Ordinals
// continue the base checklist's numbering so the combined list reads as one
// sequence.
func (p *Phase2) AddManual(ctx context.Context, sessionID string, input ItemInput) (*models.Phase2Item, error) {
	session, err := p.fetchPhase2Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	ordinal, err := p.nextOrdinal(ctx, session)
	if err != nil {
		return nil, err
	}

	item := &models.Phase2Item{
		SessionID:      sessionID,
		Ordinal:        ordinal,
		Category:       input.Category,
		Description:    input.Description,
		ExpectedResult: input.ExpectedResult,
		Notes:          input.Notes,
		Provenance:     models.ProvenanceManual,
	}

	err = p.persistence.Phase2ItemRepository().Save(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add item: %w", err)
	}

	return item, nil
}

// ImportFromTemplate copies every item of a template into the session. The
// import is all-or-nothing: either all items land or none do.
func (p *Phase2) ImportFromTemplate(ctx context.Context, sessionID, templateID string) ([]*models.Phase2Item, error) {
	session, err := p.fetchPhase2Session(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	template, err := p.persistence.TemplateRepository().GetByID(ctx, templateID)
	if err != nil {
		return nil, err
	}

	if template == nil {
		return nil, ErrTemplateNotFound
	}

	templateItems, err := p.persistence.TemplateRepository().ListItems(ctx, templateID)
	if err != nil {
		return nil, fmt.Errorf("failed to list template items: %w", err)
	}

	if len(templateItems) == 0 {
		return nil, ErrEmptyTemplate
	}

	ordinal, err := p.nextOrdinal(ctx, session)
	if err != nil {
		return nil, err
	}

	items := make([]*models.Phase2Item, 0, len(templateItems))
	for _, templateItem := range templateItems {
		items = append(items, &models.Phase2Item{
			SessionID:      sessionID,
			Ordinal:        ordinal,
			Category:       templateItem.Category,
			Description:    templateItem.Description,
			ExpectedResult: templateItem.ExpectedResult,
			Notes:          templateItem.Notes,
			Provenance:     models.ProvenanceTemplate,
			TemplateID:     &template.ID,
		})
		ordinal++
	}

	err = p.persistence.Phase2ItemRepository().SaveAll(ctx, items)
	if err != nil {
		return nil, fmt.Errorf("failed to import template items: %w", err)
	}

	return items, nil
}

// ListBySession returns a session's phase 2 items in ordinal order.
func (p *Phase2) ListBySession(ctx context.Context, sessionID string) ([]*models.Phase2Item, error) {
	session, err := p.persistence.SessionRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session == nil {
		return nil, ErrSessionNotFound
	}

	items, err := p.persistence.Phase2ItemRepository().ListBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list session items: %w", err)
	}

	return items, nil
}

// nextOrdinal picks the ordinal after the highest one across the base
// checklist and the session's existing phase 2 items.
func (p *Phase2) nextOrdinal(ctx context.Context, session *models.Session) (int, error) {
	baseItems, err := p.persistence.ChecklistRepository().ListItems(ctx, session.ChecklistID)
	if err != nil {
		return 0, fmt.Errorf("failed to list checklist items: %w", err)
	}

	phase2Items, err := p.persistence.Phase2ItemRepository().ListBySession(ctx, session.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list session items: %w", err)
	}

	ordinal := 0

	for _, item := range baseItems {
		if item.Ordinal > ordinal {
			ordinal = item.Ordinal
		}
	}

	for _, item := range phase2Items {
		if item.Ordinal > ordinal {
			ordinal = item.Ordinal
		}
	}

	return ordinal + 1, nil
}

func (p *Phase2) fetchPhase2Session(ctx context.Context, sessionID string) (*models.Session, error) {
	session, err := p.persistence.SessionRepository().GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session == nil {
		return nil, ErrSessionNotFound
	}

	if session.CurrentPhase != models.SessionPhase2 {
		return nil, ErrPhaseOrder
	}

	return session, nil
}
