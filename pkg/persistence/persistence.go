// Package persistence provides the data storage abstraction layer for
// checklists, review sessions, validations, and templates.
package persistence

import (
	"context"
	"time"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
)

// Persistence is the storage entry point. Implementations must hand out
// repositories that share the same underlying store.
type Persistence interface {
	ChecklistRepository() ChecklistRepository
	SessionRepository() SessionRepository
	Phase2ItemRepository() Phase2ItemRepository
	ValidationRepository() ValidationRepository
	TemplateRepository() TemplateRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// ListChecklistsOptions filters checklist listings.
type ListChecklistsOptions struct {
	PublishedOnly bool
}

// ListTemplatesOptions filters template listings.
type ListTemplatesOptions struct {
	ActiveOnly bool
	Category   string
}

// ChecklistRepository stores checklists and their items. GetByID returns
// (nil, nil) when the checklist does not exist.
type ChecklistRepository interface {
	ListChecklists(ctx context.Context, opts ListChecklistsOptions) ([]*models.Checklist, error)
	GetByID(ctx context.Context, id string) (*models.Checklist, error)
	Save(ctx context.Context, checklist *models.Checklist) error
	// Delete removes the checklist together with its items and every
	// session (and session dependents) that references it.
	Delete(ctx context.Context, id string) error

	SaveItem(ctx context.Context, item *models.ChecklistItem) error
	// ListItems returns the checklist's items in ordinal order.
	ListItems(ctx context.Context, checklistID string) ([]*models.ChecklistItem, error)
}

// SessionRepository stores review sessions. The MarkPhase* operations are
// conditional writes: each one is guarded on the session's current phase
// columns and fails with ErrPhaseConflict when another transition got there
// first, so concurrent completions can never double-advance a session.
type SessionRepository interface {
	GetByID(ctx context.Context, id string) (*models.Session, error)
	ListByChecklist(ctx context.Context, checklistID string) ([]*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
	// Delete removes the session and cascades to its validations and
	// phase-2 items.
	Delete(ctx context.Context, id string) error

	MarkPhase1Completed(ctx context.Context, sessionID, completedBy string, at time.Time) error
	MarkPhase2Started(ctx context.Context, sessionID string, at time.Time) error
	MarkPhase2Completed(ctx context.Context, sessionID, completedBy string, at time.Time) error
}

// Phase2ItemRepository stores session-scoped supplementary items.
type Phase2ItemRepository interface {
	GetByID(ctx context.Context, id string) (*models.Phase2Item, error)
	// ListBySession returns the session's phase-2 items in ordinal order.
	ListBySession(ctx context.Context, sessionID string) ([]*models.Phase2Item, error)
	Save(ctx context.Context, item *models.Phase2Item) error
	// SaveAll persists the items as a single atomic unit; on failure
	// nothing is written. Used by template import.
	SaveAll(ctx context.Context, items []*models.Phase2Item) error
}

// ValidationRepository is append-only: validations are recorded, listed, and
// removed only via session cascade.
type ValidationRepository interface {
	Save(ctx context.Context, validation *models.Validation) error
	// ListBySession returns every validation of the session, both phases,
	// ordered by validated_at ascending with insertion order breaking ties.
	ListBySession(ctx context.Context, sessionID string) ([]*models.Validation, error)
	// ListBySessionPhase is ListBySession restricted to one phase.
	ListBySessionPhase(ctx context.Context, sessionID string, phase models.ValidationPhase) ([]*models.Validation, error)
}

// TemplateRepository stores reusable item templates.
type TemplateRepository interface {
	ListTemplates(ctx context.Context, opts ListTemplatesOptions) ([]*models.Template, error)
	GetByID(ctx context.Context, id string) (*models.Template, error)
	Save(ctx context.Context, template *models.Template) error

	SaveItem(ctx context.Context, item *models.TemplateItem) error
	// ListItems returns the template's items in ordinal order.
	ListItems(ctx context.Context, templateID string) ([]*models.TemplateItem, error)
}
