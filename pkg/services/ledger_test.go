package services

import (
	"testing"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Record(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	validation, err := ledger.Record(t.Context(), f.session.ID, models.Phase1, RecordInput{
		Target:        f.itemTarget(0),
		Status:        models.StatusPass,
		ActualResult:  "Login succeeded with valid credentials",
		ValidatorName: "alice",
	})
	require.NoError(t, err)
	require.NotNil(t, validation)

	assert.NotEmpty(t, validation.ID)
	assert.False(t, validation.ValidatedAt.IsZero())
	assert.Equal(t, models.Phase1, validation.Phase)
	assert.Equal(t, models.StatusPass, validation.Status)
}

func TestLedger_Record_InvalidStatus(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	_, err := ledger.Record(t.Context(), f.session.ID, models.Phase1, RecordInput{
		Target: f.itemTarget(0),
		Status: "maybe",
	})
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestLedger_Record_InvalidPhase(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	_, err := ledger.Record(t.Context(), f.session.ID, models.ValidationPhase(3), RecordInput{
		Target: f.itemTarget(0),
		Status: models.StatusPass,
	})
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestLedger_Record_SessionNotFound(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	_, err := ledger.Record(t.Context(), "missing", models.Phase1, RecordInput{
		Target: f.itemTarget(0),
		Status: models.StatusPass,
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestLedger_Record_TargetOutsideSession(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	_, err := ledger.Record(t.Context(), f.session.ID, models.Phase1, RecordInput{
		Target: models.ValidationTarget{Kind: models.TargetChecklistItem, ItemID: "someone-elses-item"},
		Status: models.StatusPass,
	})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestLedger_Record_Phase2TargetInPhase1(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	_, err := ledger.Record(t.Context(), f.session.ID, models.Phase1, RecordInput{
		Target: models.ValidationTarget{Kind: models.TargetPhase2Item, ItemID: "extra-item"},
		Status: models.StatusPass,
	})
	assert.ErrorIs(t, err, ErrInvalidTarget)
}

func TestLedger_Record_PhaseGate(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)
	sessions := NewSession(f.persistence)

	// Phase 2 records are rejected while the session is in phase 1.
	_, err := ledger.Record(t.Context(), f.session.ID, models.Phase2, RecordInput{
		Target: f.itemTarget(0),
		Status: models.StatusPass,
	})
	assert.ErrorIs(t, err, ErrPhaseOrder)

	f.recordAll(t, models.Phase1, models.StatusPass, f.allItemTargets()...)

	_, err = sessions.CompletePhase1(t.Context(), f.session.ID, "alice")
	require.NoError(t, err)

	_, err = sessions.StartPhase2(t.Context(), f.session.ID)
	require.NoError(t, err)

	// And phase 1 records are rejected once the session has moved on.
	_, err = ledger.Record(t.Context(), f.session.ID, models.Phase1, RecordInput{
		Target: f.itemTarget(0),
		Status: models.StatusPass,
	})
	assert.ErrorIs(t, err, ErrPhaseOrder)
}

func TestLedger_LatestWins(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	// Fail first, then pass on re-validation. Both entries stay in the
	// ledger; the newer one decides the item's outcome.
	f.recordAll(t, models.Phase1, models.StatusFail, f.itemTarget(0))
	f.recordAll(t, models.Phase1, models.StatusPass, f.itemTarget(0))

	all, err := ledger.ListBySession(t.Context(), f.session.ID)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, models.StatusFail, all[0].Status)
	assert.Equal(t, models.StatusPass, all[1].Status)

	latest, err := ledger.LatestPerItem(t.Context(), f.session.ID, models.Phase1)
	require.NoError(t, err)
	require.Len(t, latest, 1)
	assert.Equal(t, models.StatusPass, latest[f.itemTarget(0).Key()].Status)
}

func TestLedger_Summarize(t *testing.T) {
	f := newReviewFixture(t, "Verify login", "Verify logout", "Verify signup", "Verify reset")
	ledger := NewLedger(f.persistence)

	f.recordAll(t, models.Phase1, models.StatusPass, f.itemTarget(0))
	f.recordAll(t, models.Phase1, models.StatusFail, f.itemTarget(1))
	f.recordAll(t, models.Phase1, models.StatusBlocked, f.itemTarget(2))

	summary, err := ledger.Summarize(t.Context(), f.session.ID, models.Phase1)
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalItems)
	assert.Equal(t, 3, summary.Validated)
	assert.Equal(t, 1, summary.Pass)
	assert.Equal(t, 1, summary.Fail)
	assert.Equal(t, 0, summary.Skip)
	assert.Equal(t, 1, summary.Blocked)
	assert.False(t, summary.Complete())

	f.recordAll(t, models.Phase1, models.StatusSkip, f.itemTarget(3))

	summary, err = ledger.Summarize(t.Context(), f.session.ID, models.Phase1)
	require.NoError(t, err)
	assert.True(t, summary.Complete())
	assert.Equal(t, 1, summary.Skip)
}

func TestLedger_Summarize_CountsLatestOnly(t *testing.T) {
	f := newReviewFixture(t, "Verify login")
	ledger := NewLedger(f.persistence)

	f.recordAll(t, models.Phase1, models.StatusFail, f.itemTarget(0))
	f.recordAll(t, models.Phase1, models.StatusPass, f.itemTarget(0))

	summary, err := ledger.Summarize(t.Context(), f.session.ID, models.Phase1)
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Validated)
	assert.Equal(t, 1, summary.Pass)
	assert.Equal(t, 0, summary.Fail)
}
