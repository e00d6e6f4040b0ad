// Package web provides HTTP handlers and REST API endpoints for the review
// workflow.
package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/rpmcdougall/qa-tracker/pkg/models"
	"github.com/rpmcdougall/qa-tracker/pkg/otelhelper"
	"github.com/rpmcdougall/qa-tracker/pkg/services"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type APIHandlers struct {
	checklistService *services.Checklist
	templateService  *services.Template
	sessionService   *services.Session
	ledgerService    *services.Ledger
	phase2Service    *services.Phase2
	resultsService   *services.Results
	validator        *validator.Validate
	tracer           trace.Tracer
}

func NewAPIHandlers(
	checklistService *services.Checklist,
	templateService *services.Template,
	sessionService *services.Session,
	ledgerService *services.Ledger,
	phase2Service *services.Phase2,
	resultsService *services.Results,
	validator *validator.Validate,
	tracer trace.Tracer,
) *APIHandlers {
	return &APIHandlers{
		checklistService: checklistService,
		templateService:  templateService,
		sessionService:   sessionService,
		ledgerService:    ledgerService,
		phase2Service:    phase2Service,
		resultsService:   resultsService,
		validator:        validator,
		tracer:           tracer,
	}
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOk := h.checklistService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOk {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func (h *APIHandlers) CreateChecklist(c fiber.Ctx) error {
	var req CreateChecklistRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.checklistService.Create(c.Context(), req.Name, req.Description)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetChecklists(c fiber.Ctx) error {
	publishedOnly, _ := strconv.ParseBool(c.Query("published"))

	checklists, err := h.checklistService.List(c.Context(), publishedOnly)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"checklists": checklists})
}

func (h *APIHandlers) GetChecklist(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Checklist ID is required")
	}

	checklist, err := h.checklistService.FetchByID(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(checklist)
}

func (h *APIHandlers) AddChecklistItem(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Checklist ID is required")
	}

	var req AddItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.checklistService.AddItem(c.Context(), id, itemInput(req))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *APIHandlers) GetChecklistItems(c fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return badRequest(c, "Checklist ID is required")
	}

	items, err := h.checklistService.Items(c.Context(), id)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

func (h *APIHandlers) PublishChecklist(c fiber.Ctx) error {
	checklist, err := h.checklistService.Publish(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(checklist)
}

func (h *APIHandlers) UnpublishChecklist(c fiber.Ctx) error {
	checklist, err := h.checklistService.Unpublish(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(checklist)
}

func (h *APIHandlers) DeleteChecklist(c fiber.Ctx) error {
	err := h.checklistService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CreateTemplate(c fiber.Ctx) error {
	var req CreateTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.templateService.Create(c.Context(), req.Name, req.Description, req.Category)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	templates, err := h.templateService.List(c.Context(), activeOnly, c.Query("category"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"templates": templates})
}

func (h *APIHandlers) GetTemplate(c fiber.Ctx) error {
	template, err := h.templateService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(template)
}

func (h *APIHandlers) AddTemplateItem(c fiber.Ctx) error {
	var req AddItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.templateService.AddItem(c.Context(), c.Params("id"), itemInput(req))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *APIHandlers) GetTemplateItems(c fiber.Ctx) error {
	items, err := h.templateService.Items(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

func (h *APIHandlers) CreateSession(c fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.sessionService.Create(c.Context(), req.ChecklistID, req.Name)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) GetSession(c fiber.Ctx) error {
	session, err := h.sessionService.FetchByID(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) GetChecklistSessions(c fiber.Ctx) error {
	sessions, err := h.sessionService.ListByChecklist(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"sessions": sessions})
}

func (h *APIHandlers) DeleteSession(c fiber.Ctx) error {
	err := h.sessionService.Delete(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) CompletePhase1(c fiber.Ctx) error {
	sessionID := c.Params("id")

	var req CompletePhaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "session.complete_phase1",
		attribute.String(otelhelper.SessionIDKey, sessionID),
	)
	defer span.End()

	session, err := h.sessionService.CompletePhase1(ctx, sessionID, req.CompletedBy)
	if err != nil {
		otelhelper.SetError(span, err)

		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) StartPhase2(c fiber.Ctx) error {
	sessionID := c.Params("id")

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "session.start_phase2",
		attribute.String(otelhelper.SessionIDKey, sessionID),
	)
	defer span.End()

	session, err := h.sessionService.StartPhase2(ctx, sessionID)
	if err != nil {
		otelhelper.SetError(span, err)

		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) CompletePhase2(c fiber.Ctx) error {
	sessionID := c.Params("id")

	var req CompletePhaseRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "session.complete_phase2",
		attribute.String(otelhelper.SessionIDKey, sessionID),
	)
	defer span.End()

	session, err := h.sessionService.CompletePhase2(ctx, sessionID, req.CompletedBy)
	if err != nil {
		otelhelper.SetError(span, err)

		return handleServiceError(c, err)
	}

	return c.JSON(session)
}

func (h *APIHandlers) RecordValidation(c fiber.Ctx) error {
	sessionID := c.Params("id")

	var req RecordValidationRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "ledger.record",
		attribute.String(otelhelper.SessionIDKey, sessionID),
		attribute.Int(otelhelper.PhaseKey, req.Phase),
		attribute.String(otelhelper.TargetKindKey, req.TargetKind),
		attribute.String(otelhelper.StatusKey, req.Status),
	)
	defer span.End()

	validation, err := h.ledgerService.Record(ctx, sessionID, models.ValidationPhase(req.Phase), services.RecordInput{
		Target:        req.Target(),
		Status:        models.ValidationStatus(req.Status),
		ActualResult:  req.ActualResult,
		Notes:         req.Notes,
		ValidatorName: req.ValidatorName,
	})
	if err != nil {
		otelhelper.SetError(span, err)

		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(validation)
}

func (h *APIHandlers) AddSessionItem(c fiber.Ctx) error {
	var req AddItemRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	item, err := h.phase2Service.AddManual(c.Context(), c.Params("id"), itemInput(req))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

func (h *APIHandlers) ImportSessionItems(c fiber.Ctx) error {
	sessionID := c.Params("id")

	var req ImportTemplateRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	ctx, span := otelhelper.StartSpan(c.Context(), h.tracer, "phase2.import_template",
		attribute.String(otelhelper.SessionIDKey, sessionID),
		attribute.String(otelhelper.TemplateIDKey, req.TemplateID),
	)
	defer span.End()

	items, err := h.phase2Service.ImportFromTemplate(ctx, sessionID, req.TemplateID)
	if err != nil {
		otelhelper.SetError(span, err)

		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"items": items})
}

func (h *APIHandlers) GetSessionItems(c fiber.Ctx) error {
	items, err := h.phase2Service.ListBySession(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"items": items})
}

func (h *APIHandlers) GetPhaseSummary(c fiber.Ctx) error {
	sessionID := c.Params("id")

	phase, err := parsePhase(c.Params("phase"))
	if err != nil {
		return badRequest(c, "Phase must be 1 or 2")
	}

	summary, err := h.ledgerService.Summarize(c.Context(), sessionID, phase)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(summary)
}

func (h *APIHandlers) GetPhaseResults(c fiber.Ctx) error {
	sessionID := c.Params("id")

	phase, err := parsePhase(c.Params("phase"))
	if err != nil {
		return badRequest(c, "Phase must be 1 or 2")
	}

	results, err := h.resultsService.PhaseResults(c.Context(), sessionID, phase)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(results)
}

func (h *APIHandlers) GetTimeline(c fiber.Ctx) error {
	timeline, err := h.resultsService.Timeline(c.Context(), c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{"timeline": timeline})
}

func parsePhase(raw string) (models.ValidationPhase, error) {
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, err
	}

	phase := models.ValidationPhase(value)
	if !phase.Valid() {
		return 0, services.ErrInvalidPhase
	}

	return phase, nil
}

func itemInput(req AddItemRequest) services.ItemInput {
	return services.ItemInput{
		Category:       req.Category,
		Description:    req.Description,
		ExpectedResult: req.ExpectedResult,
		Notes:          req.Notes,
	}
}
