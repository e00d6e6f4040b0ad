package persistence

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSessionError_WrapsAndMatches(t *testing.T) {
	err := NewSessionError("MarkPhase2Started", "session-1", ErrPhaseConflict)

	assert.ErrorIs(t, err, ErrPhaseConflict)
	assert.Contains(t, err.Error(), "MarkPhase2Started")
	assert.Contains(t, err.Error(), "session-1")

	wrapped := fmt.Errorf("failed to start phase 2: %w", err)
	assert.True(t, IsPhaseConflict(wrapped))
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		check    func(error) bool
		expected bool
	}{
		{"checklist not found", ErrChecklistNotFound, IsChecklistNotFound, true},
		{"session not found", ErrSessionNotFound, IsSessionNotFound, true},
		{"template not found", ErrTemplateNotFound, IsTemplateNotFound, true},
		{"phase conflict", ErrPhaseConflict, IsPhaseConflict, true},
		{"mismatched sentinel", ErrChecklistNotFound, IsSessionNotFound, false},
		{"generic error", errors.New("boom"), IsPhaseConflict, false},
		{"nil error", nil, IsChecklistNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.check(tt.err))
		})
	}
}
