package repository

import (
	"context"
	"errors"

	"talentdocs/internal/model"
)

// Sentinel errors surfaced by repositories.
var (
	// ErrNotFoundOrDenied covers both a missing document and one the actor
	// may not see. Deliberately indistinguishable so existence never leaks.
	ErrNotFoundOrDenied = errors.New("document not found")
	// ErrAuthorization is returned when the actor may not create or modify
	// documents for the target entity.
	ErrAuthorization = errors.New("not authorized for this entity")
)

// DocumentRepository is authorized CRUD over document metadata. It is the
// only component that touches the relational store, and every operation
// resolves the actor's access context before touching a row.
type DocumentRepository interface {
	// FindDocuments returns a filtered, paginated listing scoped to what the
	// actor may see. An actor with no capabilities gets an empty page, not
	// an error.
	FindDocuments(ctx context.Context, actorID string, f model.DocumentFilter) (*PageResult[model.Document], error)

	// FindByID fetches one document and applies the row-level access check.
	// Returns (nil, nil) when the document is absent or denied.
	FindByID(ctx context.Context, id, actorID string) (*model.Document, error)

	// Create inserts a new document. UploadedBy is always persisted as the
	// resolved identity user, never a caller-supplied value.
	Create(ctx context.Context, actorID string, doc *model.Document) (*model.Document, error)

	// Update mutates only document_type, metadata, processing_status and
	// status (applied as the deletion timestamp). file_path, storage_bucket,
	// file_size and mime_type are write-once.
	Update(ctx context.Context, id, actorID string, upd model.DocumentUpdate) (*model.Document, error)

	// SoftDelete sets deleted_at. Idempotent: deleting an already-deleted
	// document is not an error.
	SoftDelete(ctx context.Context, id, actorID string) error
}

// PageResult is a generic pagination result wrapper.
type PageResult[T any] struct {
	Items []T
	Total int
}
