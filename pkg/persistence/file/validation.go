package file

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rpmcdougall/qa-tracker/pkg/models"
)

// validationDocument wraps a validation with its insertion sequence number,
// the tiebreak for identical timestamps.
type validationDocument struct {
	models.Validation

	Seq int64 `json:"seq"`
}

// ValidationRepository handles the append-only validation ledger on disk.
type ValidationRepository struct {
	root    string
	mu      *sync.Mutex
	lastSeq int64
}

// NewValidationRepository creates a new validation repository.
func NewValidationRepository(root string, mu *sync.Mutex) *ValidationRepository {
	return &ValidationRepository{root: root, mu: mu}
}

func (r *ValidationRepository) dir() string {
	return filepath.Join(r.root, "validations")
}

// Save appends a validation.
func (r *ValidationRepository) Save(_ context.Context, validation *models.Validation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if validation.ID == "" {
		validation.ID = uuid.New().String()
	}

	if validation.ValidatedAt.IsZero() {
		validation.ValidatedAt = time.Now().UTC()
	}

	seq, err := r.nextSeq()
	if err != nil {
		return err
	}

	doc := validationDocument{Validation: *validation, Seq: seq}

	return writeDocument(r.dir(), validation.ID, &doc)
}

// ListBySession returns every validation of the session, both phases, oldest
// first with insertion order breaking timestamp ties.
func (r *ValidationRepository) ListBySession(ctx context.Context, sessionID string) ([]*models.Validation, error) {
	return r.list(sessionID, func(doc *validationDocument) bool {
		return true
	})
}

// ListBySessionPhase is ListBySession restricted to one phase.
func (r *ValidationRepository) ListBySessionPhase(_ context.Context, sessionID string, phase models.ValidationPhase) ([]*models.Validation, error) {
	return r.list(sessionID, func(doc *validationDocument) bool {
		return doc.Phase == phase
	})
}

func (r *ValidationRepository) list(sessionID string, keep func(*validationDocument) bool) ([]*models.Validation, error) {
	docs := make([]*validationDocument, 0)

	err := readAll(r.dir(), func(data []byte) error {
		var doc validationDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}

		if doc.SessionID == sessionID && keep(&doc) {
			docs = append(docs, &doc)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].ValidatedAt.Equal(docs[j].ValidatedAt) {
			return docs[i].Seq < docs[j].Seq
		}

		return docs[i].ValidatedAt.Before(docs[j].ValidatedAt)
	})

	validations := make([]*models.Validation, 0, len(docs))
	for _, doc := range docs {
		validation := doc.Validation
		validations = append(validations, &validation)
	}

	return validations, nil
}

func (r *ValidationRepository) deleteBySession(sessionID string) error {
	ids := make([]string, 0)

	err := readAll(r.dir(), func(data []byte) error {
		var doc validationDocument
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}

		if doc.SessionID == sessionID {
			ids = append(ids, doc.ID)
		}

		return nil
	})
	if err != nil {
		return err
	}

	for _, id := range ids {
		err := removeDocument(r.dir(), id)
		if err != nil {
			return err
		}
	}

	return nil
}

// nextSeq recovers the counter from disk on first use so sequence numbers
// survive process restarts.
func (r *ValidationRepository) nextSeq() (int64, error) {
	if r.lastSeq == 0 {
		err := readAll(r.dir(), func(data []byte) error {
			var doc validationDocument
			if err := json.Unmarshal(data, &doc); err != nil {
				return err
			}

			if doc.Seq > r.lastSeq {
				r.lastSeq = doc.Seq
			}

			return nil
		})
		if err != nil {
			return 0, err
		}
	}

	r.lastSeq++

	return r.lastSeq, nil
}
