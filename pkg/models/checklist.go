// Package models defines the core domain models for two-phase QA review tracking.
package models

import "time"

// ChecklistStatus represents the lifecycle state of a checklist.
type ChecklistStatus string

const (
	ChecklistStatusDraft     ChecklistStatus = "draft"     // Editable, not reviewable
	ChecklistStatusPublished ChecklistStatus = "published" // Frozen, sessions may be started
)

// Checklist is an ordered set of test items authored once and reused across
// review sessions. Only published checklists can back a session.
type Checklist struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"        validate:"required,min=3"`
	Description string          `json:"description"`
	Status      ChecklistStatus `json:"status"      validate:"required"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// IsPublished reports whether sessions may be created against this checklist.
func (c *Checklist) IsPublished() bool {
	return c.Status == ChecklistStatusPublished
}

// ChecklistItem is a single test step of a checklist. Items are immutable to
// the review workflow; ordinals are assigned at authoring time and unique
// within a checklist.
type ChecklistItem struct {
	ID             string `json:"id"`
	ChecklistID    string `json:"checklist_id"`
	Ordinal        int    `json:"ordinal"`
	Category       string `json:"category,omitempty"`
	Description    string `json:"description"          validate:"required"`
	ExpectedResult string `json:"expected_result,omitempty"`
	Notes          string `json:"notes,omitempty"`
}
