package models

import "time"

// ItemProvenance records how a phase-2 item entered a session.
type ItemProvenance string

const (
	ProvenanceManual   ItemProvenance = "manual"   // Authored ad hoc by the reviewer
	ProvenanceTemplate ItemProvenance = "template" // Copied from a template
)

// Phase2Item is a checklist item scoped to exactly one session, created only
// while that session is in phase 2. Ordinals continue after the base
// checklist's ordinals and are never reused. TemplateID is set only when
// Provenance is ProvenanceTemplate.
type Phase2Item struct {
	ID             string         `json:"id"`
	SessionID      string         `json:"session_id"`
	Ordinal        int            `json:"ordinal"`
	Category       string         `json:"category,omitempty"`
	Description    string         `json:"description"           validate:"required"`
	ExpectedResult string         `json:"expected_result,omitempty"`
	Notes          string         `json:"notes,omitempty"`
	Provenance     ItemProvenance `json:"provenance"`
	TemplateID     *string        `json:"template_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
