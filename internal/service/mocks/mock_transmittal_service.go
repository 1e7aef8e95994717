package mocks

import (
	"context"

	"docregister/internal/model"
	"docregister/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockTransmittalService struct {
	mock.Mock
}

func (m *MockTransmittalService) Send(ctx context.Context, in service.SendInput) (*model.Transmittal, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transmittal), args.Error(1)
}

func (m *MockTransmittalService) Get(ctx context.Context, id string) (*model.Transmittal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Transmittal), args.Error(1)
}

func (m *MockTransmittalService) ListForOrg(ctx context.Context, orgID string, dir model.Direction, limit, offset int) (*service.ListResult[model.Transmittal], error) {
	args := m.Called(ctx, orgID, dir, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Transmittal]), args.Error(1)
}
