package services

import (
	"testing"

	"github.com/rpmcdougall/qa-tracker/pkg/persistence/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplate_Create(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewTemplate(persistence)

	created, err := service.Create(t.Context(), "Regression pack", "Common regression checks", "regression")
	require.NoError(t, err)
	require.NotNil(t, created)

	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Active)
	assert.Equal(t, "regression", created.Category)
}

func TestTemplate_FetchByID_NotFound(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewTemplate(persistence)

	template, err := service.FetchByID(t.Context(), "non-existent")
	assert.Nil(t, template)
	assert.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplate_AddItem_AssignsOrdinals(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewTemplate(persistence)

	template, err := service.Create(t.Context(), "Regression pack", "", "")
	require.NoError(t, err)

	first, err := service.AddItem(t.Context(), template.ID, ItemInput{Description: "Check error pages"})
	require.NoError(t, err)

	second, err := service.AddItem(t.Context(), template.ID, ItemInput{Description: "Check redirects"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.Ordinal)
	assert.Equal(t, 2, second.Ordinal)

	items, err := service.Items(t.Context(), template.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestTemplate_List_Filters(t *testing.T) {
	persistence := file.NewPersistence(t.TempDir())
	service := NewTemplate(persistence)

	_, err := service.Create(t.Context(), "Regression pack", "", "regression")
	require.NoError(t, err)

	_, err = service.Create(t.Context(), "Accessibility pack", "", "accessibility")
	require.NoError(t, err)

	all, err := service.List(t.Context(), false, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	regression, err := service.List(t.Context(), false, "regression")
	require.NoError(t, err)
	require.Len(t, regression, 1)
	assert.Equal(t, "Regression pack", regression[0].Name)
}
