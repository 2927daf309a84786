package mocks

import (
	"context"

	"talentdocs/internal/model"
	"talentdocs/internal/repository"

	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) FindDocuments(ctx context.Context, actorID string, f model.DocumentFilter) (*repository.PageResult[model.Document], error) {
	args := m.Called(ctx, actorID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Document]), args.Error(1)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id, actorID string) (*model.Document, error) {
	args := m.Called(ctx, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Create(ctx context.Context, actorID string, doc *model.Document) (*model.Document, error) {
	args := m.Called(ctx, actorID, doc)
	if f, ok := args.Get(0).(func(context.Context, string, *model.Document) *model.Document); ok {
		return f(ctx, actorID, doc), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, id, actorID string, upd model.DocumentUpdate) (*model.Document, error) {
	args := m.Called(ctx, id, actorID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentRepository) SoftDelete(ctx context.Context, id, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}
