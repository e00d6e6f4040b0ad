package models

import "time"

// SessionPhase represents the current stage of a review session. Phases only
// move forward: phase1 -> phase2 -> completed.
type SessionPhase string

const (
	SessionPhase1         SessionPhase = "phase1"    // Author self-validation
	SessionPhase2         SessionPhase = "phase2"    // Independent reviewer validation
	SessionPhaseCompleted SessionPhase = "completed" // Terminal
)

// Session is one review cycle over a published checklist. Phase-1 completion
// and the phase-2 transition are distinct steps: a session can be "phase 1
// complete" while its current phase is still phase1.
type Session struct {
	ID          string       `json:"id"`
	ChecklistID string       `json:"checklist_id" validate:"required"`
	Name        string       `json:"name"         validate:"required"`
	CurrentPhase SessionPhase `json:"current_phase"`
	CreatedAt   time.Time    `json:"created_at"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`

	Phase1StartedAt   *time.Time `json:"phase1_started_at,omitempty"`
	Phase1CompletedAt *time.Time `json:"phase1_completed_at,omitempty"`
	Phase1CompletedBy string     `json:"phase1_completed_by,omitempty"`
	Phase2StartedAt   *time.Time `json:"phase2_started_at,omitempty"`
	Phase2CompletedAt *time.Time `json:"phase2_completed_at,omitempty"`
	Phase2CompletedBy string     `json:"phase2_completed_by,omitempty"`
}

// Phase1Completed reports whether phase 1 has been signed off.
func (s *Session) Phase1Completed() bool {
	return s.Phase1CompletedAt != nil
}

// Phase2Completed reports whether phase 2 has been signed off.
func (s *Session) Phase2Completed() bool {
	return s.Phase2CompletedAt != nil
}
