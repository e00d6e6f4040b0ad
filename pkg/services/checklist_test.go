package services

import (
	"testing"

	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChecklist(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	assert.NotNil(t, service)
	assert.Equal(t, persistence, service.persistence)
}

func TestChecklist_Create(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	created, err := service.Create(t.Context(), "Release checklist", "Pre-release review items")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Release checklist", created.Name)
	assert.Equal(t, models.ChecklistStatusDraft, created.Status)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestChecklist_FetchByID_NotFound(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	checklist, err := service.FetchByID(t.Context(), "non-existent")
	assert.Nil(t, checklist)
	assert.ErrorIs(t, err, ErrChecklistNotFound)
}

func TestChecklist_AddItem_AssignsOrdinals(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	checklist, err := service.Create(t.Context(), "Release checklist", "")
	require.NoError(t, err)

	first, err := service.AddItem(t.Context(), checklist.ID, ItemInput{Description: "Verify login"})
	require.NoError(t, err)

	second, err := service.AddItem(t.Context(), checklist.ID, ItemInput{Description: "Verify logout"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Ordinal)
	assert.Equal(t, 2, second.Ordinal)

	items, err := service.Items(t.Context(), checklist.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Verify login", items[0].Description)
	assert.Equal(t, "Verify logout", items[1].Description)
}

func TestChecklist_AddItem_ChecklistNotFound(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	item, err := service.AddItem(t.Context(), "missing", ItemInput{Description: "Verify login"})
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrChecklistNotFound)
}

func TestChecklist_PublishAndUnpublish(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	checklist, err := service.Create(t.Context(), "Release checklist", "")
	require.NoError(t, err)
	assert.False(t, checklist.IsPublished())

	published, err := service.Publish(t.Context(), checklist.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublished())

	unpublished, err := service.Unpublish(t.Context(), checklist.ID)
	require.NoError(t, err)
	assert.False(t, unpublished.IsPublished())
}

func TestChecklist_List_PublishedOnly(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	draft, err := service.Create(t.Context(), "Draft checklist", "")
	require.NoError(t, err)

	toPublish, err := service.Create(t.Context(), "Published checklist", "")
	require.NoError(t, err)

	_, err = service.Publish(t.Context(), toPublish.ID)
	require.NoError(t, err)

	all, err := service.List(t.Context(), false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	published, err := service.List(t.Context(), true)
	require.NoError(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, toPublish.ID, published[0].ID)
	assert.NotEqual(t, draft.ID, published[0].ID)
}

func TestChecklist_Delete(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewChecklist(persistence)

	checklist, err := service.Create(t.Context(), "Release checklist", "")
	require.NoError(t, err)

	err = service.Delete(t.Context(), checklist.ID)
	require.NoError(t, err)

	fetched, err := service.FetchByID(t.Context(), checklist.ID)
	assert.Nil(t, fetched)
	assert.ErrorIs(t, err, ErrChecklistNotFound)
}
