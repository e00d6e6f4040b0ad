package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence/file"
	"github.com/rpmcdougall/qa-tracker/pkg/services"
	"github.com/rpmcdougall/qa-tracker/pkg/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	p := file.NewPersistence(t.TempDir())

	handlers := web.NewAPIHandlers(
		services.NewChecklist(p),
		services.NewTemplate(p),
		services.NewSession(p),
		services.NewLedger(p),
		services.NewPhase2(p),
		services.NewResults(p),
		validator.New(validator.WithRequiredStructEnabled()),
		noop.NewTracerProvider().Tracer("test"),
	)

	app := fiber.New()

	cl := app.Group("/checklists")
	cl.Get("/", handlers.GetChecklists)
	cl.Post("/", handlers.CreateChecklist)
	cl.Get("/:id", handlers.GetChecklist)
	cl.Delete("/:id", handlers.DeleteChecklist)
	cl.Post("/:id/items", handlers.AddChecklistItem)
	cl.Get("/:id/items", handlers.GetChecklistItems)
	cl.Post("/:id/publish", handlers.PublishChecklist)

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/:id", handlers.GetSession)
	s.Post("/:id/phase1/complete", handlers.CompletePhase1)
	s.Post("/:id/phase2/start", handlers.StartPhase2)
	s.Post("/:id/validations", handlers.RecordValidation)
	s.Get("/:id/phases/:phase/results", handlers.GetPhaseResults)

	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)

		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := resp.Body.Close(); err != nil {
			t.Logf("Failed to close response body: %v", err)
		}
	})

	return resp
}

// publishedSession seeds a published checklist with one item plus a fresh
// session, returning both IDs and the item ID.
func publishedSession(t *testing.T, app *fiber.App) (sessionID, itemID string) {
	t.Helper()

	resp := doJSON(t, app, http.MethodPost, "/checklists", web.CreateChecklistRequest{Name: "Release checklist"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var checklist models.Checklist

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&checklist))

	resp = doJSON(t, app, http.MethodPost, "/checklists/"+checklist.ID+"/items", web.AddItemRequest{Description: "Verify login"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var item models.ChecklistItem

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&item))

	resp = doJSON(t, app, http.MethodPost, "/checklists/"+checklist.ID+"/publish", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/sessions", web.CreateSessionRequest{
		ChecklistID: checklist.ID,
		Name:        "Build 42 review",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var session models.Session

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&session))

	return session.ID, item.ID
}

func TestAPIHandlers_CreateChecklist(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    any
		expectedStatus int
	}{
		{
			name:           "successful creation",
			requestBody:    web.CreateChecklistRequest{Name: "Release checklist", Description: "Pre-release gate"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "validation error - missing name",
			requestBody:    web.CreateChecklistRequest{Description: "No name"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "validation error - name too short",
			requestBody:    web.CreateChecklistRequest{Name: "ab"},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t)

			resp := doJSON(t, app, http.MethodPost, "/checklists", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAPIHandlers_GetChecklist_NotFound(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, http.MethodGet, "/checklists/non-existent", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "not_found")
}

func TestAPIHandlers_CreateSession_UnpublishedConflict(t *testing.T) {
	app := setupTestApp(t)

	resp := doJSON(t, app, http.MethodPost, "/checklists", web.CreateChecklistRequest{Name: "Draft checklist"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var checklist models.Checklist

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&checklist))

	resp = doJSON(t, app, http.MethodPost, "/sessions", web.CreateSessionRequest{
		ChecklistID: checklist.ID,
		Name:        "Premature review",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPIHandlers_RecordValidation(t *testing.T) {
	app := setupTestApp(t)
	sessionID, itemID := publishedSession(t, app)

	tests := []struct {
		name           string
		requestBody    web.RecordValidationRequest
		expectedStatus int
	}{
		{
			name: "successful record",
			requestBody: web.RecordValidationRequest{
				Phase:         1,
				TargetKind:    "checklist_item",
				ItemID:        itemID,
				Status:        "pass",
				ValidatorName: "alice",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "invalid status rejected by validator",
			requestBody: web.RecordValidationRequest{
				Phase:      1,
				TargetKind: "checklist_item",
				ItemID:     itemID,
				Status:     "maybe",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "invalid phase rejected by validator",
			requestBody: web.RecordValidationRequest{
				Phase:      3,
				TargetKind: "checklist_item",
				ItemID:     itemID,
				Status:     "pass",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown target item",
			requestBody: web.RecordValidationRequest{
				Phase:      1,
				TargetKind: "checklist_item",
				ItemID:     "someone-elses-item",
				Status:     "pass",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "phase 2 record while in phase 1",
			requestBody: web.RecordValidationRequest{
				Phase:      2,
				TargetKind: "checklist_item",
				ItemID:     itemID,
				Status:     "pass",
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/sessions/"+sessionID+"/validations", tt.requestBody)
			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
		})
	}
}

func TestAPIHandlers_CompletePhase1_Incomplete(t *testing.T) {
	app := setupTestApp(t)
	sessionID, _ := publishedSession(t, app)

	resp := doJSON(t, app, http.MethodPost, "/sessions/"+sessionID+"/phase1/complete", web.CompletePhaseRequest{
		CompletedBy: "alice",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "incomplete_validation")
	assert.Contains(t, string(body), "ordinals 1")
}

func TestAPIHandlers_StartPhase2_BeforeComplete(t *testing.T) {
	app := setupTestApp(t)
	sessionID, _ := publishedSession(t, app)

	resp := doJSON(t, app, http.MethodPost, "/sessions/"+sessionID+"/phase2/start", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAPIHandlers_GetPhaseResults(t *testing.T) {
	app := setupTestApp(t)
	sessionID, itemID := publishedSession(t, app)

	resp := doJSON(t, app, http.MethodPost, "/sessions/"+sessionID+"/validations", web.RecordValidationRequest{
		Phase:      1,
		TargetKind: "checklist_item",
		ItemID:     itemID,
		Status:     "fail",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/sessions/"+sessionID+"/phases/1/results", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var results services.PhaseResults

	require.NoError(t, json.NewDecoder(resp.Body).Decode(&results))
	assert.Equal(t, sessionID, results.SessionID)
	assert.Equal(t, 1, results.Summary.Fail)
	require.Len(t, results.Items, 1)
	require.NotNil(t, results.Items[0].Latest)
	assert.Equal(t, models.StatusFail, results.Items[0].Latest.Status)
}

func TestAPIHandlers_GetPhaseResults_BadPhase(t *testing.T) {
	app := setupTestApp(t)
	sessionID, _ := publishedSession(t, app)

	resp := doJSON(t, app, http.MethodGet, "/sessions/"+sessionID+"/phases/9/results", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
