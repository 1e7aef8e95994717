package mocks

import (
	"context"

	"docregister/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockRegisterService struct {
	mock.Mock
}

func (m *MockRegisterService) DocumentsForOrg(ctx context.Context, orgID, projectID string, limit, offset int) (*service.ListResult[service.DocumentEntry], error) {
	args := m.Called(ctx, orgID, projectID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[service.DocumentEntry]), args.Error(1)
}

func (m *MockRegisterService) Snapshot(ctx context.Context, documentID string) (*service.Snapshot, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Snapshot), args.Error(1)
}
