package models

import "time"

// ValidationStatus is the recorded outcome of checking one item.
type ValidationStatus string

const (
	StatusPass    ValidationStatus = "pass"
	StatusFail    ValidationStatus = "fail"
	StatusSkip    ValidationStatus = "skip"
	StatusBlocked ValidationStatus = "blocked"
)

// Valid reports whether s is one of the closed set of statuses.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusPass, StatusFail, StatusSkip, StatusBlocked:
		return true
	}

	return false
}

// ValidationPhase tags a validation with the review phase it was recorded in.
type ValidationPhase int

const (
	Phase1 ValidationPhase = 1
	Phase2 ValidationPhase = 2
)

// Valid reports whether p is phase 1 or 2.
func (p ValidationPhase) Valid() bool {
	return p == Phase1 || p == Phase2
}

// TargetKind discriminates which kind of item a validation points at.
type TargetKind string

const (
	TargetChecklistItem TargetKind = "checklist_item"
	TargetPhase2Item    TargetKind = "phase2_item"
)

// ValidationTarget is a discriminated reference to exactly one item: either a
// base checklist item or a session-scoped phase-2 item. Keying the reference
// on Kind keeps the mutual exclusion structural instead of relying on two
// nullable foreign keys.
type ValidationTarget struct {
	Kind   TargetKind `json:"kind"    validate:"required,oneof=checklist_item phase2_item"`
	ItemID string     `json:"item_id" validate:"required"`
}

// Key returns a stable identity for latest-per-item grouping.
func (t ValidationTarget) Key() string {
	return string(t.Kind) + ":" + t.ItemID
}

// Validation is one recorded outcome against one item, in one phase, within
// one session. Validations are append-only: re-testing an item records a new
// row and the most recent one wins for completeness checks and summaries.
type Validation struct {
	ID            string           `json:"id"`
	SessionID     string           `json:"session_id"`
	Phase         ValidationPhase  `json:"phase"`
	Target        ValidationTarget `json:"target"`
	ValidatedAt   time.Time        `json:"validated_at"`
	Status        ValidationStatus `json:"status"`
	ActualResult  string           `json:"actual_result,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	ValidatorName string           `json:"validator_name,omitempty"`
}
