package mocks

import (
	"context"

	"talentdocs/internal/model"
	"talentdocs/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) Create(ctx context.Context, actorID string, in service.CreateDocumentInput) (*service.DocumentWithURL, error) {
	args := m.Called(ctx, actorID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentWithURL), args.Error(1)
}

func (m *MockDocumentService) Get(ctx context.Context, id, actorID string) (*service.DocumentWithURL, error) {
	args := m.Called(ctx, id, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentWithURL), args.Error(1)
}

func (m *MockDocumentService) List(ctx context.Context, actorID string, f model.DocumentFilter) (*service.DocumentListResult, error) {
	args := m.Called(ctx, actorID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.DocumentListResult), args.Error(1)
}

func (m *MockDocumentService) Update(ctx context.Context, id, actorID string, upd model.DocumentUpdate) (*model.Document, error) {
	args := m.Called(ctx, id, actorID, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, id, actorID string) error {
	args := m.Called(ctx, id, actorID)
	return args.Error(0)
}
