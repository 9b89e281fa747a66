package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/samirrijal/backoffice/internal/core/domain"
	"github.com/samirrijal/backoffice/internal/core/ports"
	"github.com/samirrijal/backoffice/internal/pkg/metrics"
	"github.com/samirrijal/backoffice/internal/pkg/nestedpath"
	"github.com/samirrijal/backoffice/internal/pkg/telemetry"
)

// Validator is implemented by the typed view of a document collection.
type Validator interface {
	Validate() error
}

// ContentService stores free-form JSON documents of one collection and
// checks each write against the typed view T.
type ContentService[T Validator] struct {
	collection string
	docs       ports.DocumentRepository
	publisher  ports.EventPublisher
}

// NewContentService creates a ContentService for collection.
func NewContentService[T Validator](collection string, docs ports.DocumentRepository, publisher ports.EventPublisher) *ContentService[T] {
	return &ContentService[T]{collection: collection, docs: docs, publisher: publisher}
}

// Collection returns the collection name.
func (s *ContentService[T]) Collection() string { return s.collection }

func (s *ContentService[T]) List(ctx context.Context, limit, offset int) ([]domain.Document, int, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.docs.List(ctx, s.collection, limit, offset)
}

func (s *ContentService[T]) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.docs.GetByID(ctx, s.collection, id)
}

// Create stores a new document.
func (s *ContentService[T]) Create(ctx context.Context, data map[string]any) (*domain.Document, error) {
	if data == nil {
		data = map[string]any{}
	}
	if _, err := s.Decode(data); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	doc := &domain.Document{
		ID:         uuid.NewString(),
		Collection: s.collection,
		Data:       data,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.docs.Upsert(ctx, doc); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", s.collection, err)
	}
	publishChange(ctx, s.publisher, s.collection, doc.ID, domain.ActionCreated)
	return doc, nil
}

// Replace overwrites the whole tree of an existing document.
func (s *ContentService[T]) Replace(ctx context.Context, id string, data map[string]any) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, s.collection, id)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = map[string]any{}
	}
	return s.store(ctx, doc, data)
}

// PatchFields applies dotted-path updates to a document. The patched tree
// must still decode into a valid T; the stored document is untouched otherwise.
func (s *ContentService[T]) PatchFields(ctx context.Context, id string, ops []nestedpath.Op) (*domain.Document, error) {
	ctx, span := telemetry.Start(ctx, "ContentService.PatchFields",
		telemetry.AttrCollection.String(s.collection),
		telemetry.AttrDocumentID.String(id),
		telemetry.AttrPatchOps.Int(len(ops)),
	)
	defer span.End()

	if len(ops) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrValidation)
	}

	doc, err := s.docs.GetByID(ctx, s.collection, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.store(ctx, doc, nestedpath.Apply(doc.Data, ops))
	if err != nil {
		return nil, err
	}
	metrics.PathPatchesApplied.WithLabelValues(s.collection).Add(float64(len(ops)))
	return updated, nil
}

func (s *ContentService[T]) Delete(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, s.collection, id); err != nil {
		return err
	}
	publishChange(ctx, s.publisher, s.collection, id, domain.ActionDeleted)
	return nil
}

// Decode converts a document tree into T and validates it.
func (s *ContentService[T]) Decode(data map[string]any) (T, error) {
	var v T
	raw, err := json.Marshal(data)
	if err != nil {
		return v, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	if err := v.Validate(); err != nil {
		return v, err
	}
	return v, nil
}

func (s *ContentService[T]) store(ctx context.Context, doc *domain.Document, data map[string]any) (*domain.Document, error) {
	if _, err := s.Decode(data); err != nil {
		return nil, err
	}
	next := *doc
	next.Data = data
	next.UpdatedAt = time.Now().UTC()
	if err := s.docs.Upsert(ctx, &next); err != nil {
		return nil, fmt.Errorf("upsert %s: %w", s.collection, err)
	}
	publishChange(ctx, s.publisher, s.collection, next.ID, domain.ActionUpdated)
	return &next, nil
}
