package mocks

import (
	"context"

	"talentdocs/internal/identity"

	"github.com/stretchr/testify/mock"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, actorID string) (*identity.AccessContext, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.AccessContext), args.Error(1)
}
