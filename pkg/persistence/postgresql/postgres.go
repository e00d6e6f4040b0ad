// Package postgresql provides the PostgreSQL persistence implementation for
// the QA review workflow.
package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq" // postgres driver
	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence/sqlbase"
)

// Persistence implements the persistence layer for PostgreSQL.
type Persistence struct {
	db             *sql.DB
	logger         *slog.Logger
	checklistRepo  *ChecklistRepository
	sessionRepo    *SessionRepository
	phase2ItemRepo *Phase2ItemRepository
	validationRepo *ValidationRepository
	templateRepo   *TemplateRepository
}

// NewPersistence creates a new PostgreSQL persistence layer and runs pending
// schema migrations.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (*Persistence, error) {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	err = database.PingContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	migrationManager := sqlbase.NewMigrationManager(logger, database, migrations())

	err = migrationManager.RunMigrations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Persistence{
		db:             database,
		logger:         logger,
		checklistRepo:  NewChecklistRepository(database, logger),
		sessionRepo:    NewSessionRepository(database, logger),
		phase2ItemRepo: NewPhase2ItemRepository(database, logger),
		validationRepo: NewValidationRepository(database, logger),
		templateRepo:   NewTemplateRepository(database, logger),
	}, nil
}

// Close closes the database connection.
func (p *Persistence) Close(ctx context.Context) error {
	if p.db != nil {
		err := p.db.Close()
		if err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}

// HealthCheck verifies the database connection is healthy.
func (p *Persistence) HealthCheck(ctx context.Context) error {
	err := p.db.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	return nil
}

func (p *Persistence) ChecklistRepository() persistence.ChecklistRepository {
	return p.checklistRepo
}

func (p *Persistence) SessionRepository() persistence.SessionRepository {
	return p.sessionRepo
}

func (p *Persistence) Phase2ItemRepository() persistence.Phase2ItemRepository {
	return p.phase2ItemRepo
}

func (p *Persistence) ValidationRepository() persistence.ValidationRepository {
	return p.validationRepo
}

func (p *Persistence) TemplateRepository() persistence.TemplateRepository {
	return p.templateRepo
}
