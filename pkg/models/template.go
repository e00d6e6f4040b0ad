package models

import "time"

// Template is a reusable, session-independent set of item definitions. During
// phase 2 a reviewer can import a template's items into the session being
// reviewed; the items are copied, never referenced.
type Template struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"        validate:"required,min=3"`
	Description string    `json:"description"`
	Category    string    `json:"category,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TemplateItem is one item definition within a template.
type TemplateItem struct {
	ID             string `json:"id"`
	TemplateID     string `json:"template_id"`
	Ordinal        int    `json:"ordinal"`
	Category       string `json:"category,omitempty"`
	Description    string `json:"description"          validate:"required"`
	ExpectedResult string `json:"expected_result,omitempty"`
	Notes          string `json:"notes,omitempty"`
}
