package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationStatus_Valid(t *testing.T) {
	for _, status := range []ValidationStatus{StatusPass, StatusFail, StatusSkip, StatusBlocked} {
		assert.True(t, status.Valid(), string(status))
	}

	assert.False(t, ValidationStatus("maybe").Valid())
	assert.False(t, ValidationStatus("").Valid())
}

func TestValidationPhase_Valid(t *testing.T) {
	assert.True(t, Phase1.Valid())
	assert.True(t, Phase2.Valid())
	assert.False(t, ValidationPhase(0).Valid())
	assert.False(t, ValidationPhase(3).Valid())
}

func TestValidationTarget_Key(t *testing.T) {
	checklistTarget := ValidationTarget{Kind: TargetChecklistItem, ItemID: "item-1"}
	phase2Target := ValidationTarget{Kind: TargetPhase2Item, ItemID: "item-1"}

	assert.Equal(t, "checklist_item:item-1", checklistTarget.Key())
	assert.Equal(t, "phase2_item:item-1", phase2Target.Key())

	// The kind is part of the key: same item ID, different kinds, no clash.
	assert.NotEqual(t, checklistTarget.Key(), phase2Target.Key())
}
