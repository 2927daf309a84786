// Package event defines the downstream notification contract for document
// lifecycle transitions. Publication is fire-and-forget: a bus outage never
// fails the operation that triggered the event.
package event

import (
	"context"
	"time"

	"talentdocs/internal/model"
)

// Event names, also used as the publish channels.
const (
	DocumentUploadedEvent = "document.uploaded"
	DocumentUpdatedEvent  = "document.updated"
	DocumentDeletedEvent  = "document.deleted"
)

// Event is one lifecycle notification. Payload is marshaled to JSON as-is.
type Event struct {
	Name    string
	Payload any
}

// UploadedPayload describes a freshly stored document.
type UploadedPayload struct {
	DocumentID string           `json:"document_id"`
	EntityType model.EntityType `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
	FilePath   string           `json:"file_path"`
	Bucket     string           `json:"bucket"`
	FileName   string           `json:"file_name"`
	MimeType   string           `json:"mime_type"`
	FileSize   int64            `json:"file_size"`
	UploadedBy string           `json:"uploaded_by"`
	Timestamp  time.Time        `json:"timestamp"`
}

// UpdatedPayload carries the id and the applied update.
type UpdatedPayload struct {
	DocumentID string               `json:"document_id"`
	Updates    model.DocumentUpdate `json:"updates"`
}

// DeletedPayload identifies a soft-deleted document.
type DeletedPayload struct {
	DocumentID string           `json:"document_id"`
	EntityType model.EntityType `json:"entity_type"`
	EntityID   string           `json:"entity_id"`
}

// DocumentUploaded builds the document.uploaded event for a stored document.
func DocumentUploaded(doc *model.Document) Event {
	return Event{
		Name: DocumentUploadedEvent,
		Payload: UploadedPayload{
			DocumentID: doc.ID,
			EntityType: doc.EntityType,
			EntityID:   doc.EntityID,
			FilePath:   doc.FilePath,
			Bucket:     doc.StorageBucket,
			FileName:   doc.FileName,
			MimeType:   doc.MimeType,
			FileSize:   doc.FileSize,
			UploadedBy: doc.UploadedBy,
			Timestamp:  doc.CreatedAt,
		},
	}
}

// DocumentUpdated builds the document.updated event.
func DocumentUpdated(id string, updates model.DocumentUpdate) Event {
	return Event{
		Name:    DocumentUpdatedEvent,
		Payload: UpdatedPayload{DocumentID: id, Updates: updates},
	}
}

// DocumentDeleted builds the document.deleted event.
func DocumentDeleted(id string, entityType model.EntityType, entityID string) Event {
	return Event{
		Name:    DocumentDeletedEvent,
		Payload: DeletedPayload{DocumentID: id, EntityType: entityType, EntityID: entityID},
	}
}

// Publisher sends lifecycle events to downstream consumers. Per-document
// ordering follows the caller's publish order; consumers must treat events
// for different documents as commutative.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
}

// NopPublisher discards every event. Used when no event bus is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
