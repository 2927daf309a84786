package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"talentdocs/internal/config"
	"talentdocs/internal/event"
	eventmocks "talentdocs/internal/event/mocks"
	"talentdocs/internal/model"
	"talentdocs/internal/repository"
	repomocks "talentdocs/internal/repository/mocks"
	"talentdocs/internal/storage"
	storagemocks "talentdocs/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pdfData = []byte("%PDF-1.4\n%test document body")

func newTestService(ms *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository, mp *eventmocks.MockPublisher) DocumentService {
	buckets := storage.NewBuckets(config.BucketConfig{
		Candidate: "candidate-documents",
		Company:   "company-documents",
		System:    "system-documents",
	})
	return NewDocumentService(ms, buckets, mr, mp, zap.NewNop(), time.Minute)
}

func echoPut(_ context.Context, bucket, key string, _ io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
	return storage.ObjectInfo{Bucket: bucket, Key: key, Size: opt.Size}
}

func echoCreate(_ context.Context, _ string, doc *model.Document) *model.Document {
	return doc
}

func TestDocumentService_Create(t *testing.T) {
	ctx := context.Background()

	validInput := func() CreateDocumentInput {
		return CreateDocumentInput{
			Reader:       bytes.NewReader(pdfData),
			FileName:     "resume.pdf",
			DeclaredSize: int64(len(pdfData)),
			EntityType:   model.EntityCandidate,
			EntityID:     "cand-1",
			DocumentType: "resume",
			Metadata:     map[string]any{"is_primary": true},
		}
	}

	tests := []struct {
		name       string
		input      func() CreateDocumentInput
		setupMocks func(ms *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository, mp *eventmocks.MockPublisher)
		check      func(t *testing.T, got *DocumentWithURL, err error, ms *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository)
	}{
		{
			name:  "happy path",
			input: validInput,
			setupMocks: func(ms *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository, mp *eventmocks.MockPublisher) {
				ms.On("Put", ctx, "candidate-documents",
					mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "candidate/cand-1/") }),
					mock.Anything, mock.Anything,
				).Return(echoPut, nil)
				mr.On("Create", ctx, "actor-1", mock.Anything).Return(echoCreate, nil)
				mp.On("Publish", ctx, mock.MatchedBy(func(ev event.Event) bool {
					return ev.Name == event.DocumentUploadedEvent
				})).Return(nil)
				ms.On("PresignGet", ctx, "candidate-documents", mock.Anything, time.Minute).
					Return("https://storage.local/signed", nil)
			},
			check: func(t *testing.T, got *DocumentWithURL, err error, _ *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				require.NoError(t, err)
				assert.NotEmpty(t, got.ID)
				assert.Equal(t, "application/pdf", got.MimeType)
				assert.Equal(t, int64(len(pdfData)), got.FileSize)
				assert.Equal(t, "candidate-documents", got.StorageBucket)
				assert.Equal(t, model.ProcessingPending, got.ProcessingStatus)
				assert.Equal(t, "https://storage.local/signed", got.DownloadURL)
			},
		},
		{
			name: "declared size over the cap is rejected before any read",
			input: func() CreateDocumentInput {
				in := validInput()
				in.DeclaredSize = 15 << 20
				return in
			},
			check: func(t *testing.T, got *DocumentWithURL, err error, ms *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				assert.ErrorIs(t, err, ErrFileTooLarge)
				assert.Nil(t, got)
				ms.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "actual bytes over the cap are rejected despite honest declared size",
			input: func() CreateDocumentInput {
				in := validInput()
				in.Reader = bytes.NewReader(bytes.Repeat([]byte{'a'}, MaxFileSize+1))
				in.DeclaredSize = 0
				return in
			},
			check: func(t *testing.T, got *DocumentWithURL, err error, ms *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				assert.ErrorIs(t, err, ErrFileTooLarge)
				ms.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "png disguised as pdf is rejected before storage",
			input: func() CreateDocumentInput {
				in := validInput()
				in.Reader = bytes.NewReader(pngBytes)
				in.DeclaredSize = int64(len(pngBytes))
				return in
			},
			check: func(t *testing.T, got *DocumentWithURL, err error, ms *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				assert.ErrorIs(t, err, ErrUnsupportedFileType)
				ms.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name: "invalid entity type",
			input: func() CreateDocumentInput {
				in := validInput()
				in.EntityType = "invoice"
				return in
			},
			check: func(t *testing.T, _ *DocumentWithURL, err error, _ *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				assert.ErrorIs(t, err, ErrInvalidEntityType)
			},
		},
		{
			name: "missing entity id",
			input: func() CreateDocumentInput {
				in := validInput()
				in.EntityID = ""
				return in
			},
			check: func(t *testing.T, _ *DocumentWithURL, err error, _ *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				assert.ErrorIs(t, err, ErrEntityIDRequired)
			},
		},
		{
			name:  "storage failure stops before metadata write",
			input: validInput,
			setupMocks: func(ms *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository, mp *eventmocks.MockPublisher) {
				ms.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, storage.ErrStorageWrite)
			},
			check: func(t *testing.T, got *DocumentWithURL, err error, _ *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository) {
				assert.ErrorIs(t, err, storage.ErrStorageWrite)
				assert.Nil(t, got)
				mr.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
			},
		},
		{
			name:  "metadata failure rolls back the stored blob",
			input: validInput,
			setupMocks: func(ms *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository, mp *eventmocks.MockPublisher) {
				ms.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
				mr.On("Create", ctx, "actor-1", mock.Anything).Return(nil, errors.New("insert failed"))
				ms.On("Delete", ctx, "candidate-documents",
					mock.MatchedBy(func(key string) bool { return strings.HasPrefix(key, "candidate/cand-1/") }),
				).Return(nil)
			},
			check: func(t *testing.T, got *DocumentWithURL, err error, ms *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				assert.Error(t, err)
				assert.Nil(t, got)
				ms.AssertCalled(t, "Delete", ctx, "candidate-documents", mock.Anything)
			},
		},
		{
			name:  "publish failure does not fail the create",
			input: validInput,
			setupMocks: func(ms *storagemocks.MockStorage, mr *repomocks.MockDocumentRepository, mp *eventmocks.MockPublisher) {
				ms.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(echoPut, nil)
				mr.On("Create", ctx, "actor-1", mock.Anything).Return(echoCreate, nil)
				mp.On("Publish", ctx, mock.Anything).Return(errors.New("bus down"))
				ms.On("PresignGet", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return("https://storage.local/signed", nil)
			},
			check: func(t *testing.T, got *DocumentWithURL, err error, _ *storagemocks.MockStorage, _ *repomocks.MockDocumentRepository) {
				require.NoError(t, err)
				assert.NotNil(t, got)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ms := new(storagemocks.MockStorage)
			mr := new(repomocks.MockDocumentRepository)
			mp := new(eventmocks.MockPublisher)
			if tt.setupMocks != nil {
				tt.setupMocks(ms, mr, mp)
			}
			svc := newTestService(ms, mr, mp)

			got, err := svc.Create(ctx, "actor-1", tt.input())

			tt.check(t, got, err, ms, mr)
			ms.AssertExpectations(t)
			mr.AssertExpectations(t)
			mp.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("found", func(t *testing.T) {
		ms := new(storagemocks.MockStorage)
		mr := new(repomocks.MockDocumentRepository)
		mr.On("FindByID", ctx, "doc-1", "actor-1").Return(&model.Document{
			ID:            "doc-1",
			FilePath:      "candidate/cand-1/key",
			StorageBucket: "candidate-documents",
		}, nil)
		ms.On("PresignGet", ctx, "candidate-documents", "candidate/cand-1/key", time.Minute).
			Return("https://storage.local/signed", nil)
		svc := newTestService(ms, mr, new(eventmocks.MockPublisher))

		got, err := svc.Get(ctx, "doc-1", "actor-1")

		require.NoError(t, err)
		assert.Equal(t, "doc-1", got.ID)
		assert.Equal(t, "https://storage.local/signed", got.DownloadURL)
	})

	t.Run("absent or denied maps to not found", func(t *testing.T) {
		mr := new(repomocks.MockDocumentRepository)
		mr.On("FindByID", ctx, "doc-x", "actor-1").Return(nil, nil)
		svc := newTestService(new(storagemocks.MockStorage), mr, new(eventmocks.MockPublisher))

		got, err := svc.Get(ctx, "doc-x", "actor-1")

		assert.ErrorIs(t, err, ErrNotFound)
		assert.Nil(t, got)
	})

	t.Run("empty id", func(t *testing.T) {
		svc := newTestService(new(storagemocks.MockStorage), new(repomocks.MockDocumentRepository), new(eventmocks.MockPublisher))

		_, err := svc.Get(ctx, "", "actor-1")

		assert.ErrorIs(t, err, ErrIDRequired)
	})
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()

	mr := new(repomocks.MockDocumentRepository)
	// zero page and limit are normalized before hitting the repository
	mr.On("FindDocuments", ctx, "actor-1", model.DocumentFilter{Page: 1, Limit: 20}).
		Return(&repository.PageResult[model.Document]{
			Items: []model.Document{{ID: "doc-1"}, {ID: "doc-2"}},
			Total: 7,
		}, nil)
	svc := newTestService(new(storagemocks.MockStorage), mr, new(eventmocks.MockPublisher))

	got, err := svc.List(ctx, "actor-1", model.DocumentFilter{})

	require.NoError(t, err)
	assert.Len(t, got.Items, 2)
	assert.Equal(t, 1, got.Page)
	assert.Equal(t, 20, got.Limit)
	assert.Equal(t, 7, got.Total)
	mr.AssertExpectations(t)
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()
	docType := "cover_letter"
	upd := model.DocumentUpdate{DocumentType: &docType}

	t.Run("happy path emits document.updated", func(t *testing.T) {
		mr := new(repomocks.MockDocumentRepository)
		mp := new(eventmocks.MockPublisher)
		mr.On("Update", ctx, "doc-1", "actor-1", upd).
			Return(&model.Document{ID: "doc-1", DocumentType: docType}, nil)
		mp.On("Publish", ctx, mock.MatchedBy(func(ev event.Event) bool {
			return ev.Name == event.DocumentUpdatedEvent
		})).Return(nil)
		svc := newTestService(new(storagemocks.MockStorage), mr, mp)

		got, err := svc.Update(ctx, "doc-1", "actor-1", upd)

		require.NoError(t, err)
		assert.Equal(t, docType, got.DocumentType)
		mp.AssertExpectations(t)
	})

	t.Run("denied update maps to not found", func(t *testing.T) {
		mr := new(repomocks.MockDocumentRepository)
		mr.On("Update", ctx, "doc-1", "actor-1", upd).Return(nil, repository.ErrNotFoundOrDenied)
		svc := newTestService(new(storagemocks.MockStorage), mr, new(eventmocks.MockPublisher))

		_, err := svc.Update(ctx, "doc-1", "actor-1", upd)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("soft delete never touches storage", func(t *testing.T) {
		ms := new(storagemocks.MockStorage)
		mr := new(repomocks.MockDocumentRepository)
		mp := new(eventmocks.MockPublisher)
		mr.On("FindByID", ctx, "doc-1", "actor-1").Return(&model.Document{
			ID:         "doc-1",
			EntityType: model.EntityCandidate,
			EntityID:   "cand-1",
		}, nil)
		mr.On("SoftDelete", ctx, "doc-1", "actor-1").Return(nil)
		mp.On("Publish", ctx, mock.MatchedBy(func(ev event.Event) bool {
			return ev.Name == event.DocumentDeletedEvent
		})).Return(nil)
		svc := newTestService(ms, mr, mp)

		err := svc.Delete(ctx, "doc-1", "actor-1")

		require.NoError(t, err)
		ms.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
		mr.AssertExpectations(t)
		mp.AssertExpectations(t)
	})

	t.Run("absent document", func(t *testing.T) {
		mr := new(repomocks.MockDocumentRepository)
		mr.On("FindByID", ctx, "doc-x", "actor-1").Return(nil, nil)
		svc := newTestService(new(storagemocks.MockStorage), mr, new(eventmocks.MockPublisher))

		err := svc.Delete(ctx, "doc-x", "actor-1")

		assert.ErrorIs(t, err, ErrNotFound)
	})
}
