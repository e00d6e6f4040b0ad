// Package services provides the business layer of the QA review workflow:
// the session state machine, the validation ledger, phase-2 item management,
// and the read-only results aggregator.
package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// Not-found errors (404).
var (
	// ErrChecklistNotFound is returned when a checklist is not found.
	ErrChecklistNotFound = persistence.ErrChecklistNotFound

	// ErrSessionNotFound is returned when a review session is not found.
	ErrSessionNotFound = persistence.ErrSessionNotFound

	// ErrTemplateNotFound is returned when a template is not found.
	ErrTemplateNotFound = persistence.ErrTemplateNotFound
)

// Workflow ordering and input errors.
var (
	// ErrChecklistNotPublished rejects starting a session on an unpublished checklist.
	ErrChecklistNotPublished = errors.New("checklist is not published")

	// ErrPhaseOrder rejects an operation attempted outside its allowed phase.
	ErrPhaseOrder = errors.New("operation not allowed in current phase")

	// ErrPhaseConflict indicates a phase transition lost a race and the
	// session is no longer in the phase the caller observed.
	ErrPhaseConflict = persistence.ErrPhaseConflict

	// ErrIncompleteValidation indicates a completion attempt with
	// unvalidated items outstanding.
	ErrIncompleteValidation = errors.New("unvalidated items remain")

	// ErrInvalidTarget rejects a validation whose target does not resolve
	// to an item of the session.
	ErrInvalidTarget = errors.New("validation target does not belong to session")

	// ErrInvalidPhase rejects a validation phase outside {1, 2}.
	ErrInvalidPhase = errors.New("invalid validation phase")

	// ErrInvalidStatus rejects a validation status outside the closed set.
	ErrInvalidStatus = errors.New("invalid validation status")

	// ErrEmptyTemplate rejects importing a template that has no items.
	ErrEmptyTemplate = errors.New("template has no items")
)

// IncompleteValidationError reports which items block a phase completion. The
// ordinals are those of the items without any validation in the phase being
// completed.
type IncompleteValidationError struct {
	Phase           models.ValidationPhase
	MissingOrdinals []int
}

func (e *IncompleteValidationError) Error() string {
	ordinals := make([]string, 0, len(e.MissingOrdinals))
	for _, ordinal := range e.MissingOrdinals {
		ordinals = append(ordinals, strconv.Itoa(ordinal))
	}

	return fmt.Sprintf("cannot complete phase %d: %d unvalidated items (ordinals %s)",
		e.Phase, len(e.MissingOrdinals), strings.Join(ordinals, ", "))
}

func (e *IncompleteValidationError) Unwrap() error {
	return ErrIncompleteValidation
}

// IsNotFound checks if an error indicates a missing entity (HTTP 404).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrChecklistNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrTemplateNotFound) ||
		errors.Is(err, persistence.ErrChecklistItemNotFound) ||
		errors.Is(err, persistence.ErrPhase2ItemNotFound)
}

// IsValidationError checks if an error is an input mistake (HTTP 400).
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidPhase) ||
		errors.Is(err, ErrInvalidStatus) ||
		errors.Is(err, ErrInvalidTarget) ||
		errors.Is(err, ErrEmptyTemplate)
}

// IsConflictError checks if an error is a workflow-ordering conflict (HTTP 409).
func IsConflictError(err error) bool {
	return errors.Is(err, ErrPhaseOrder) ||
		errors.Is(err, ErrPhaseConflict) ||
		errors.Is(err, ErrChecklistNotPublished) ||
		errors.Is(err, ErrIncompleteValidation)
}
