// Package file provides a file-based persistence implementation. It backs
// unit tests and small single-process deployments; every store keeps one JSON
// document per row and a shared mutex serializes multi-file operations such
// as cascading deletes and phase transitions.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rpmcdougall/qa-tracker/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
type Persistence struct {
	root           string
	mu             *sync.Mutex
	checklistRepo  *ChecklistRepository
	sessionRepo    *SessionRepository
	phase2ItemRepo *Phase2ItemRepository
	validationRepo *ValidationRepository
	templateRepo   *TemplateRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)
	mu := &sync.Mutex{}

	validationRepo := NewValidationRepository(cleanRoot, mu)
	phase2ItemRepo := NewPhase2ItemRepository(cleanRoot, mu)
	sessionRepo := NewSessionRepository(cleanRoot, mu, validationRepo, phase2ItemRepo)

	return &Persistence{
		root:           cleanRoot,
		mu:             mu,
		checklistRepo:  NewChecklistRepository(cleanRoot, mu, sessionRepo),
		sessionRepo:    sessionRepo,
		phase2ItemRepo: phase2ItemRepo,
		validationRepo: validationRepo,
		templateRepo:   NewTemplateRepository(cleanRoot, mu),
	}
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks if the file persistence layer is healthy by verifying the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) ChecklistRepository() persistence.ChecklistRepository {
	return fp.checklistRepo
}

func (fp *Persistence) SessionRepository() persistence.SessionRepository {
	return fp.sessionRepo
}

func (fp *Persistence) Phase2ItemRepository() persistence.Phase2ItemRepository {
	return fp.phase2ItemRepo
}

func (fp *Persistence) ValidationRepository() persistence.ValidationRepository {
	return fp.validationRepo
}

func (fp *Persistence) TemplateRepository() persistence.TemplateRepository {
	return fp.templateRepo
}

// writeDocument marshals v into dir/<id>.json, creating dir when needed.
func writeDocument(dir, id string, v any) error {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	err = os.WriteFile(filepath.Join(dir, id+".json"), data, 0o644)
	if err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}

	return nil
}

// readDocument unmarshals dir/<id>.json into v. It reports found=false when
// the document does not exist.
func readDocument(dir, id string, v any) (bool, error) {
	data, err := os.ReadFile(filepath.Join(dir, id+".json"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}

		return false, fmt.Errorf("failed to read document: %w", err)
	}

	err = json.Unmarshal(data, v)
	if err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	return true, nil
}

// readAll unmarshals every JSON document in dir, appending each into out via
// the decode callback.
func readAll(dir string, decode func(data []byte) error) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read document %s: %w", entry.Name(), err)
		}

		err = decode(data)
		if err != nil {
			return fmt.Errorf("failed to decode document %s: %w", entry.Name(), err)
		}
	}

	return nil
}

// removeDocument deletes dir/<id>.json. Missing documents are not an error.
func removeDocument(dir, id string) error {
	err := os.Remove(filepath.Join(dir, id+".json"))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove document: %w", err)
	}

	return nil
}
