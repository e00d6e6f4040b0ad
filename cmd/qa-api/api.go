// Package main provides the QA tracker API server implementation.
package main

import (
	"log/slog"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
	"github.com/rpmcdougall/qa-tracker/pkg/services"
	"github.com/rpmcdougall/qa-tracker/pkg/web"
	"go.opentelemetry.io/otel/trace"
)

type API struct {
	logger      *slog.Logger
	persistence persistence.Persistence
	tracer      trace.Tracer
	validate    *validator.Validate
}

func NewAPI(
	logger *slog.Logger,
	persistence persistence.Persistence,
	tracer trace.Tracer,
) *API {
	return &API{
		logger:      logger,
		persistence: persistence,
		tracer:      tracer,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (a *API) App() *fiber.App {
	checklistService := services.NewChecklist(a.persistence)
	templateService := services.NewTemplate(a.persistence)
	sessionService := services.NewSession(a.persistence)
	ledgerService := services.NewLedger(a.persistence)
	phase2Service := services.NewPhase2(a.persistence)
	resultsService := services.NewResults(a.persistence)

	handlers := web.NewAPIHandlers(
		checklistService,
		templateService,
		sessionService,
		ledgerService,
		phase2Service,
		resultsService,
		a.validate,
		a.tracer,
	)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("QA Tracker API")
	})

	cl := app.Group("/checklists")
	cl.Get("/", handlers.GetChecklists)
	cl.Post("/", handlers.CreateChecklist)
	cl.Get("/:id", handlers.GetChecklist)
	cl.Delete("/:id", handlers.DeleteChecklist)
	cl.Post("/:id/items", handlers.AddChecklistItem)
	cl.Get("/:id/items", handlers.GetChecklistItems)
	cl.Post("/:id/publish", handlers.PublishChecklist)
	cl.Post("/:id/unpublish", handlers.UnpublishChecklist)
	cl.Get("/:id/sessions", handlers.GetChecklistSessions)

	tpl := app.Group("/templates")
	tpl.Get("/", handlers.GetTemplates)
	tpl.Post("/", handlers.CreateTemplate)
	tpl.Get("/:id", handlers.GetTemplate)
	tpl.Post("/:id/items", handlers.AddTemplateItem)
	tpl.Get("/:id/items", handlers.GetTemplateItems)

	s := app.Group("/sessions")
	s.Post("/", handlers.CreateSession)
	s.Get("/:id", handlers.GetSession)
	s.Delete("/:id", handlers.DeleteSession)

	// Phase transitions:
	s.Post("/:id/phase1/complete", handlers.CompletePhase1)
	s.Post("/:id/phase2/start", handlers.StartPhase2)
	s.Post("/:id/phase2/complete", handlers.CompletePhase2)

	// Ledger and phase 2 items:
	s.Post("/:id/validations", handlers.RecordValidation)
	s.Post("/:id/items", handlers.AddSessionItem)
	s.Post("/:id/items/import", handlers.ImportSessionItems)
	s.Get("/:id/items", handlers.GetSessionItems)

	// Reports:
	s.Get("/:id/phases/:phase/summary", handlers.GetPhaseSummary)
	s.Get("/:id/phases/:phase/results", handlers.GetPhaseResults)
	s.Get("/:id/timeline", handlers.GetTimeline)

	app.Get("/health", handlers.HealthCheck)

	return app
}

func (a *API) Start(port int) error {
	app := a.App()

	err := app.Listen(":" + strconv.Itoa(port))

	return err
}
