// Package web provides HTTP request and response types for the review API.
package web

import "github.com/rpmcdougall/qa-tracker/pkg/models"

// CreateChecklistRequest represents the request body for creating a checklist.
type CreateChecklistRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
}

// AddItemRequest represents the request body for adding an item to a
// checklist, a template, or a session's phase 2.
type AddItemRequest struct {
	Category       string `json:"category"`
	Description    string `json:"description"     validate:"required"`
	ExpectedResult string `json:"expected_result"`
	Notes          string `json:"notes"`
}

// CreateTemplateRequest represents the request body for creating a template.
type CreateTemplateRequest struct {
	Name        string `json:"name"        validate:"required,min=3"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// CreateSessionRequest represents the request body for starting a review
// session against a published checklist.
type CreateSessionRequest struct {
	ChecklistID string `json:"checklist_id" validate:"required"`
	Name        string `json:"name"         validate:"required,min=3"`
}

// CompletePhaseRequest carries who is signing a phase off.
type CompletePhaseRequest struct {
	CompletedBy string `json:"completed_by" validate:"required"`
}

// RecordValidationRequest represents the request body for appending one
// validation outcome to a session's ledger.
type RecordValidationRequest struct {
	Phase         int    `json:"phase"          validate:"required,oneof=1 2"`
	TargetKind    string `json:"target_kind"    validate:"required,oneof=checklist_item phase2_item"`
	ItemID        string `json:"item_id"        validate:"required"`
	Status        string `json:"status"         validate:"required,oneof=pass fail skip blocked"`
	ActualResult  string `json:"actual_result"`
	Notes         string `json:"notes"`
	ValidatorName string `json:"validator_name"`
}

// Target converts the flat request fields into a validation target.
func (r *RecordValidationRequest) Target() models.ValidationTarget {
	return models.ValidationTarget{
		Kind:   models.TargetKind(r.TargetKind),
		ItemID: r.ItemID,
	}
}

// ImportTemplateRequest represents the request body for bulk-importing a
// template's items into a session's phase 2.
type ImportTemplateRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}
