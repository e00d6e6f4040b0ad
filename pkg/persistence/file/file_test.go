package file

import (
	"testing"
	"time"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPersistence_StripsScheme(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence("file://" + dir)

	err := p.HealthCheck(t.Context())
	assert.NoError(t, err)
}

func TestHealthCheck_MissingRoot(t *testing.T) {
	p := NewPersistence(t.TempDir() + "/does-not-exist")

	err := p.HealthCheck(t.Context())
	assert.Error(t, err)
}

func seedChecklist(t *testing.T, p *Persistence, descriptions ...string) (*models.Checklist, []*models.ChecklistItem) {
	t.Helper()

	checklist := &models.Checklist{
		Name:   "Release checklist",
		Status: models.ChecklistStatusPublished,
	}

	err := p.ChecklistRepository().Save(t.Context(), checklist)
	require.NoError(t, err)

	items := make([]*models.ChecklistItem, 0, len(descriptions))

	for i, description := range descriptions {
		item := &models.ChecklistItem{
			ChecklistID: checklist.ID,
			Ordinal:     i + 1,
			Description: description,
		}

		err := p.ChecklistRepository().SaveItem(t.Context(), item)
		require.NoError(t, err)

		items = append(items, item)
	}

	return checklist, items
}

func seedSession(t *testing.T, p *Persistence, checklistID string) *models.Session {
	t.Helper()

	now := time.Now().UTC()
	session := &models.Session{
		ChecklistID:     checklistID,
		Name:            "Build 42 review",
		CurrentPhase:    models.SessionPhase1,
		Phase1StartedAt: &now,
	}

	err := p.SessionRepository().Save(t.Context(), session)
	require.NoError(t, err)

	return session
}

func TestChecklistRepository_RoundTrip(t *testing.T) {
	p := NewPersistence(t.TempDir())

	checklist, items := seedChecklist(t, p, "Verify login", "Verify logout")

	retrieved, err := p.ChecklistRepository().GetByID(t.Context(), checklist.ID)
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, checklist.Name, retrieved.Name)

	stored, err := p.ChecklistRepository().ListItems(t.Context(), checklist.ID)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, items[0].ID, stored[0].ID)
	assert.Equal(t, 1, stored[0].Ordinal)
	assert.Equal(t, 2, stored[1].Ordinal)

	missing, err := p.ChecklistRepository().GetByID(t.Context(), "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepository_Transitions(t *testing.T) {
	p := NewPersistence(t.TempDir())

	checklist, _ := seedChecklist(t, p, "Verify login")
	session := seedSession(t, p, checklist.ID)

	err := p.SessionRepository().MarkPhase2Started(t.Context(), session.ID, time.Now().UTC())
	assert.ErrorIs(t, err, persistence.ErrPhaseConflict)

	err = p.SessionRepository().MarkPhase1Completed(t.Context(), session.ID, "alice", time.Now().UTC())
	require.NoError(t, err)

	err = p.SessionRepository().MarkPhase1Completed(t.Context(), session.ID, "alice", time.Now().UTC())
	assert.ErrorIs(t, err, persistence.ErrPhaseConflict)

	err = p.SessionRepository().MarkPhase2Started(t.Context(), session.ID, time.Now().UTC())
	require.NoError(t, err)

	err = p.SessionRepository().MarkPhase2Completed(t.Context(), session.ID, "bob", time.Now().UTC())
	require.NoError(t, err)

	retrieved, err := p.SessionRepository().GetByID(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SessionPhaseCompleted, retrieved.CurrentPhase)
	require.NotNil(t, retrieved.CompletedAt)
	assert.Equal(t, "alice", retrieved.Phase1CompletedBy)
	assert.Equal(t, "bob", retrieved.Phase2CompletedBy)
}

func TestSessionRepository_TransitionMissingSession(t *testing.T) {
	p := NewPersistence(t.TempDir())

	err := p.SessionRepository().MarkPhase1Completed(t.Context(), "missing", "alice", time.Now().UTC())
	assert.ErrorIs(t, err, persistence.ErrSessionNotFound)
}

func TestValidationRepository_SeqSurvivesReload(t *testing.T) {
	dir := t.TempDir()
	p := NewPersistence(dir)

	checklist, items := seedChecklist(t, p, "Verify login")
	session := seedSession(t, p, checklist.ID)

	target := models.ValidationTarget{Kind: models.TargetChecklistItem, ItemID: items[0].ID}
	at := time.Now().UTC().Truncate(time.Second)

	err := p.ValidationRepository().Save(t.Context(), &models.Validation{
		SessionID:   session.ID,
		Phase:       models.Phase1,
		Target:      target,
		ValidatedAt: at,
		Status:      models.StatusFail,
	})
	require.NoError(t, err)

	// A fresh store over the same directory must keep appending after the
	// highest persisted seq, not restart from zero.
	reopened := NewPersistence(dir)

	err = reopened.ValidationRepository().Save(t.Context(), &models.Validation{
		SessionID:   session.ID,
		Phase:       models.Phase1,
		Target:      target,
		ValidatedAt: at,
		Status:      models.StatusPass,
	})
	require.NoError(t, err)

	validations, err := reopened.ValidationRepository().ListBySession(t.Context(), session.ID)
	require.NoError(t, err)
	require.Len(t, validations, 2)
	assert.Equal(t, models.StatusFail, validations[0].Status)
	assert.Equal(t, models.StatusPass, validations[1].Status)
}

func TestPhase2ItemRepository_SaveAllRollsBack(t *testing.T) {
	p := NewPersistence(t.TempDir())

	checklist, _ := seedChecklist(t, p, "Verify login")
	session := seedSession(t, p, checklist.ID)

	items := []*models.Phase2Item{
		{SessionID: session.ID, Ordinal: 2, Description: "Check error pages", Provenance: models.ProvenanceTemplate},
		{SessionID: session.ID, Ordinal: 3, Description: "Check redirects", Provenance: models.ProvenanceTemplate},
	}

	err := p.Phase2ItemRepository().SaveAll(t.Context(), items)
	require.NoError(t, err)

	stored, err := p.Phase2ItemRepository().ListBySession(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestChecklistRepository_DeleteCascades(t *testing.T) {
	p := NewPersistence(t.TempDir())

	checklist, items := seedChecklist(t, p, "Verify login")
	session := seedSession(t, p, checklist.ID)

	err := p.ValidationRepository().Save(t.Context(), &models.Validation{
		SessionID: session.ID,
		Phase:     models.Phase1,
		Target:    models.ValidationTarget{Kind: models.TargetChecklistItem, ItemID: items[0].ID},
		Status:    models.StatusPass,
	})
	require.NoError(t, err)

	err = p.ChecklistRepository().Delete(t.Context(), checklist.ID)
	require.NoError(t, err)

	gone, err := p.ChecklistRepository().GetByID(t.Context(), checklist.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	goneSession, err := p.SessionRepository().GetByID(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Nil(t, goneSession)

	validations, err := p.ValidationRepository().ListBySession(t.Context(), session.ID)
	require.NoError(t, err)
	assert.Empty(t, validations)

	storedItems, err := p.ChecklistRepository().ListItems(t.Context(), checklist.ID)
	require.NoError(t, err)
	assert.Empty(t, storedItems)
}

func TestTemplateRepository_Filters(t *testing.T) {
	p := NewPersistence(t.TempDir())

	active := &models.Template{Name: "Regression pack", Category: "regression", Active: true}
	require.NoError(t, p.TemplateRepository().Save(t.Context(), active))

	retired := &models.Template{Name: "Retired pack", Category: "regression", Active: false}
	require.NoError(t, p.TemplateRepository().Save(t.Context(), retired))

	other := &models.Template{Name: "Accessibility pack", Category: "accessibility", Active: true}
	require.NoError(t, p.TemplateRepository().Save(t.Context(), other))

	activeOnly, err := p.TemplateRepository().ListTemplates(t.Context(), persistence.ListTemplatesOptions{ActiveOnly: true})
	require.NoError(t, err)
	assert.Len(t, activeOnly, 2)

	regression, err := p.TemplateRepository().ListTemplates(t.Context(), persistence.ListTemplatesOptions{Category: "regression"})
	require.NoError(t, err)
	assert.Len(t, regression, 2)

	both, err := p.TemplateRepository().ListTemplates(t.Context(), persistence.ListTemplatesOptions{ActiveOnly: true, Category: "regression"})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, active.ID, both[0].ID)
}
