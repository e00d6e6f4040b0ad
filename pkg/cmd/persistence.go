package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence/file"
	"github.com/rpmcdougall/qa-tracker/pkg/persistence/postgresql"
)

// NewPersistence picks the storage backend from the database URL scheme.
// postgres:// and postgresql:// open a PostgreSQL store; anything else is
// treated as a directory for the file store.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	switch parsePersistenceProvider(databaseURL) {
	case "postgres", "postgresql":
		return postgresql.NewPersistence(ctx, logger, databaseURL)
	default:
		return file.NewPersistence(databaseURL), nil
	}
}

func parsePersistenceProvider(databaseURL string) string {
	provider, _, found := strings.Cut(databaseURL, "://")
	if !found {
		return "file"
	}

	return provider
}
