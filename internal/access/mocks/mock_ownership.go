package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockOwnershipLookup struct {
	mock.Mock
}

func (m *MockOwnershipLookup) ApplicationBelongsToOrgs(ctx context.Context, applicationID string, orgIDs []string) (bool, error) {
	args := m.Called(ctx, applicationID, orgIDs)
	return args.Bool(0), args.Error(1)
}

func (m *MockOwnershipLookup) ApplicationAssignedToRecruiter(ctx context.Context, applicationID, recruiterID string) (bool, error) {
	args := m.Called(ctx, applicationID, recruiterID)
	return args.Bool(0), args.Error(1)
}
