// Package persistence provides standardized error types for persistence operations.
package persistence

import (
	"errors"
	"fmt"
)

// Standard persistence error types that all implementations should use.
var (
	// ErrChecklistNotFound indicates a checklist was not found by the given identifier.
	ErrChecklistNotFound = errors.New("checklist not found")

	// ErrChecklistItemNotFound indicates a checklist item was not found by the given identifier.
	ErrChecklistItemNotFound = errors.New("checklist item not found")

	// ErrSessionNotFound indicates a review session was not found by the given identifier.
	ErrSessionNotFound = errors.New("session not found")

	// ErrPhase2ItemNotFound indicates a phase-2 item was not found by the given identifier.
	ErrPhase2ItemNotFound = errors.New("phase-2 item not found")

	// ErrTemplateNotFound indicates a template was not found by the given identifier.
	ErrTemplateNotFound = errors.New("template not found")

	// ErrPhaseConflict indicates a guarded phase transition matched no row:
	// the session was not in the expected phase when the write was applied.
	ErrPhaseConflict = errors.New("session phase conflict")
)

// SessionError wraps session-related errors with additional context.
type SessionError struct {
	Op        string // Operation being performed (e.g., "MarkPhase1Completed", "Delete")
	SessionID string // Session ID if applicable
	Err       error  // Underlying error
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("%s operation failed for session %s: %v", e.Op, e.SessionID, e.Err)
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

// Is implements error comparison for session errors.
func (e *SessionError) Is(target error) bool {
	return errors.Is(e.Err, target)
}

// NewSessionError creates a new session error with context.
func NewSessionError(op, sessionID string, err error) *SessionError {
	return &SessionError{
		Op:        op,
		SessionID: sessionID,
		Err:       err,
	}
}

// IsChecklistNotFound checks if an error indicates a checklist was not found.
func IsChecklistNotFound(err error) bool {
	return errors.Is(err, ErrChecklistNotFound)
}

// IsSessionNotFound checks if an error indicates a session was not found.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}

// IsTemplateNotFound checks if an error indicates a template was not found.
func IsTemplateNotFound(err error) bool {
	return errors.Is(err, ErrTemplateNotFound)
}

// IsPhaseConflict checks if an error indicates a lost phase-transition race.
func IsPhaseConflict(err error) bool {
	return errors.Is(err, ErrPhaseConflict)
}
