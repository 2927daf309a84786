package model

import "time"

// EntityType is the category of business object a document is attached to.
// It determines the storage partition and which access rules apply.
type EntityType string

const (
	EntityCandidate   EntityType = "candidate"
	EntityJob         EntityType = "job"
	EntityApplication EntityType = "application"
	EntityCompany     EntityType = "company"
	EntityContract    EntityType = "contract"
	EntityPlacement   EntityType = "placement"
	EntitySystem      EntityType = "system"
)

// ParseEntityType validates a caller-supplied entity type string.
func ParseEntityType(s string) (EntityType, bool) {
	switch EntityType(s) {
	case EntityCandidate, EntityJob, EntityApplication, EntityCompany,
		EntityContract, EntityPlacement, EntitySystem:
		return EntityType(s), true
	}
	return "", false
}

// Processing status values for asynchronous post-processing done by
// downstream consumers. This service only stores and forwards the flag.
const (
	ProcessingPending    = "pending"
	ProcessingProcessing = "processing"
	ProcessingProcessed  = "processed"
	ProcessingFailed     = "failed"
)

// Document status values, derived from DeletedAt rather than stored.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Document is the metadata record describing one stored file.
// FilePath and StorageBucket are write-once; no update path mutates them.
type Document struct {
	ID               string         `json:"id"`
	EntityType       EntityType     `json:"entity_type"`
	EntityID         string         `json:"entity_id"`
	DocumentType     string         `json:"document_type"`
	FileName         string         `json:"file_name"`
	FilePath         string         `json:"file_path"`
	FileSize         int64          `json:"file_size"`
	MimeType         string         `json:"mime_type"`
	StorageBucket    string         `json:"storage_bucket"`
	UploadedBy       string         `json:"uploaded_by"`
	ProcessingStatus string         `json:"processing_status"`
	Metadata         map[string]any `json:"metadata"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        *time.Time     `json:"deleted_at,omitempty"`
	Status           string         `json:"status"`
}

// DeriveStatus recomputes Status from the deletion timestamp.
func (d *Document) DeriveStatus() {
	if d.DeletedAt != nil {
		d.Status = StatusDeleted
	} else {
		d.Status = StatusActive
	}
}

// IsPrimary reports whether the caller-supplied metadata marks this
// document as primary. Callers send both JSON booleans and the string
// "true", so both count.
func (d *Document) IsPrimary() bool {
	if d.Metadata == nil {
		return false
	}
	switch v := d.Metadata["is_primary"].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

// DocumentUpdate is a partial update. Nil fields are left untouched.
// Only these four fields are mutable; setting Status to "deleted" is
// applied as a soft delete, setting it back to "active" clears it.
type DocumentUpdate struct {
	DocumentType     *string         `json:"document_type"`
	Metadata         *map[string]any `json:"metadata"`
	ProcessingStatus *string         `json:"processing_status"`
	Status           *string         `json:"status"`
}

// Empty reports whether the update carries no changes.
func (u DocumentUpdate) Empty() bool {
	return u.DocumentType == nil && u.Metadata == nil &&
		u.ProcessingStatus == nil && u.Status == nil
}

// DocumentFilter narrows a document listing. Status defaults to "active"
// ("deleted" and "all" are also accepted); Search matches the file name.
type DocumentFilter struct {
	EntityType   string
	EntityID     string
	DocumentType string
	Status       string
	UploadedBy   string
	Search       string
	Page         int
	Limit        int
}
