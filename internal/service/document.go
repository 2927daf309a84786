package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"talentdocs/internal/event"
	"talentdocs/internal/model"
	"talentdocs/internal/repository"
	"talentdocs/internal/storage"
)

var (
	ErrReaderNil           = errors.New("reader is nil")
	ErrIDRequired          = errors.New("id is required")
	ErrInvalidEntityType   = errors.New("invalid entity type")
	ErrEntityIDRequired    = errors.New("entity id is required")
	ErrFileTooLarge        = errors.New("file exceeds the 10 MiB limit")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrNotFound            = errors.New("document not found")
)

// CreateDocumentInput carries one upload. DeclaredSize is the transport's
// size hint; the actual bytes read are capped and measured independently.
type CreateDocumentInput struct {
	Reader       io.Reader
	FileName     string
	DeclaredSize int64
	EntityType   model.EntityType
	EntityID     string
	DocumentType string
	Metadata     map[string]any
}

// DocumentWithURL is a document enriched with a signed download link.
type DocumentWithURL struct {
	model.Document
	DownloadURL string `json:"download_url"`
}

// DocumentListResult is the service-level DTO for paginated documents.
type DocumentListResult struct {
	Items []model.Document `json:"data"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
	Total int              `json:"total"`
}

// DocumentService is the orchestration boundary; the only component
// callers invoke directly.
type DocumentService interface {
	// Create validates, stores and records one upload, then emits a
	// best-effort document.uploaded event. Storage write always precedes
	// the metadata insert; on insert failure the just-written blob is the
	// one blob this system ever deletes automatically.
	Create(ctx context.Context, actorID string, in CreateDocumentInput) (*DocumentWithURL, error)

	// Get returns a document with a freshly minted signed URL.
	Get(ctx context.Context, id, actorID string) (*DocumentWithURL, error)

	// List returns a filtered page of documents.
	List(ctx context.Context, actorID string, f model.DocumentFilter) (*DocumentListResult, error)

	// Update applies a partial update and emits document.updated.
	Update(ctx context.Context, id, actorID string, upd model.DocumentUpdate) (*model.Document, error)

	// Delete soft-deletes the metadata record and emits document.deleted.
	// The underlying blob is never removed: downstream records may keep
	// resolving download links long after the document is marked deleted.
	Delete(ctx context.Context, id, actorID string) error
}

type documentService struct {
	store      storage.Storage
	buckets    storage.Buckets
	repo       repository.DocumentRepository
	publisher  event.Publisher
	logger     *zap.Logger
	presignTTL time.Duration
}

// NewDocumentService constructs a new DocumentService. Pass
// event.NopPublisher{} when no event bus is configured.
func NewDocumentService(store storage.Storage, buckets storage.Buckets, repo repository.DocumentRepository, publisher event.Publisher, logger *zap.Logger, presignTTL time.Duration) DocumentService {
	if publisher == nil {
		publisher = event.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if presignTTL <= 0 {
		presignTTL = storage.DefaultPresignTTL
	}
	return &documentService{
		store:      store,
		buckets:    buckets,
		repo:       repo,
		publisher:  publisher,
		logger:     logger,
		presignTTL: presignTTL,
	}
}

func (s *documentService) Create(ctx context.Context, actorID string, in CreateDocumentInput) (*DocumentWithURL, error) {
	if in.Reader == nil {
		return nil, ErrReaderNil
	}
	if _, ok := model.ParseEntityType(string(in.EntityType)); !ok {
		return nil, ErrInvalidEntityType
	}
	if in.EntityID == "" {
		return nil, ErrEntityIDRequired
	}

	// Size cap is enforced before any read or storage call, and again on
	// the actual bytes so a lying declared size cannot slip past.
	if in.DeclaredSize > MaxFileSize {
		return nil, ErrFileTooLarge
	}
	data, err := io.ReadAll(io.LimitReader(in.Reader, MaxFileSize+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > MaxFileSize {
		return nil, ErrFileTooLarge
	}

	mimeType, err := resolveMimeType(data, in.FileName)
	if err != nil {
		return nil, err
	}

	bucket := s.buckets.For(in.EntityType)
	key := buildStorageKey(in.EntityType, in.EntityID, in.FileName)

	// Storage write before metadata write, never the reverse: an orphaned
	// blob is recoverable by a sweep job, a dangling metadata row is not.
	objInfo, err := s.store.Put(ctx, bucket, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: mimeType,
		Metadata:    map[string]string{"original-filename": in.FileName},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := time.Now().UTC()
	doc := &model.Document{
		ID:               uuid.New().String(),
		EntityType:       in.EntityType,
		EntityID:         in.EntityID,
		DocumentType:     in.DocumentType,
		FileName:         in.FileName,
		FilePath:         objInfo.Key,
		FileSize:         objInfo.Size,
		MimeType:         mimeType,
		StorageBucket:    bucket,
		ProcessingStatus: model.ProcessingPending,
		Metadata:         in.Metadata,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	stored, err := s.repo.Create(ctx, actorID, doc)
	if err != nil {
		// Rollback the blob written above so no garbage object survives a
		// failed create. This is the only automatic blob delete.
		if delErr := s.store.Delete(ctx, bucket, key); delErr != nil {
			return nil, fmt.Errorf("metadata save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("metadata save failed: %w", err)
	}

	s.publish(ctx, event.DocumentUploaded(stored))

	url, err := s.store.PresignGet(ctx, stored.StorageBucket, stored.FilePath, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return &DocumentWithURL{Document: *stored, DownloadURL: url}, nil
}

func (s *documentService) Get(ctx context.Context, id, actorID string) (*DocumentWithURL, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrNotFound
	}
	url, err := s.store.PresignGet(ctx, doc.StorageBucket, doc.FilePath, s.presignTTL)
	if err != nil {
		return nil, fmt.Errorf("presign download: %w", err)
	}
	return &DocumentWithURL{Document: *doc, DownloadURL: url}, nil
}

func (s *documentService) List(ctx context.Context, actorID string, f model.DocumentFilter) (*DocumentListResult, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit <= 0 {
		f.Limit = 20
	}
	res, err := s.repo.FindDocuments(ctx, actorID, f)
	if err != nil {
		return nil, err
	}
	return &DocumentListResult{
		Items: res.Items,
		Page:  f.Page,
		Limit: f.Limit,
		Total: res.Total,
	}, nil
}

func (s *documentService) Update(ctx context.Context, id, actorID string, upd model.DocumentUpdate) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.Update(ctx, id, actorID, upd)
	if err != nil {
		if errors.Is(err, repository.ErrNotFoundOrDenied) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	s.publish(ctx, event.DocumentUpdated(doc.ID, upd))
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, id, actorID string) error {
	if id == "" {
		return ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id, actorID)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrNotFound
	}
	// Soft delete only. storage.Delete is deliberately never called here:
	// downstream records (audit trails, decisions) must keep resolving the
	// blob after the metadata is marked deleted.
	if err := s.repo.SoftDelete(ctx, id, actorID); err != nil {
		if errors.Is(err, repository.ErrNotFoundOrDenied) {
			return ErrNotFound
		}
		return err
	}
	s.publish(ctx, event.DocumentDeleted(doc.ID, doc.EntityType, doc.EntityID))
	return nil
}

// publish is best-effort: a bus outage never fails the operation that
// already committed.
func (s *documentService) publish(ctx context.Context, ev event.Event) {
	if err := s.publisher.Publish(ctx, ev); err != nil {
		s.logger.Warn("event publish failed",
			zap.String("event", ev.Name),
			zap.Error(err),
		)
	}
}

var unsafeKeyChars = regexp.MustCompile(`[^A-Za-z0-9.-]`)

// buildStorageKey generates the partitioned storage key:
// {entity_type}/{entity_id}/{unix_ms}-{token}-{sanitized_filename}.
// Timestamp plus random token makes every upload globally unique, so a key
// is never reused or overwritten; the filename fragment keeps keys
// human-readable.
func buildStorageKey(entityType model.EntityType, entityID, fileName string) string {
	token := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("%s/%s/%d-%s-%s",
		entityType,
		entityID,
		time.Now().UnixMilli(),
		token,
		unsafeKeyChars.ReplaceAllString(fileName, "_"),
	)
}
