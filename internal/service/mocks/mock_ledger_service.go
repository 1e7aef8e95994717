package mocks

import (
	"context"

	"docregister/internal/model"
	"docregister/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) CreateDocument(ctx context.Context, in service.CreateDocumentInput) (*model.Document, *model.Revision, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Document), args.Get(1).(*model.Revision), args.Error(2)
}

func (m *MockLedgerService) AddRevision(ctx context.Context, documentID string, in model.RevisionInput) (*model.Revision, error) {
	args := m.Called(ctx, documentID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockLedgerService) ResolveOrCreate(ctx context.Context, in service.ResolveInput) (*service.ResolveResult, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ResolveResult), args.Error(1)
}

func (m *MockLedgerService) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLedgerService) GetCurrent(ctx context.Context, documentID string) (*model.Revision, error) {
	args := m.Called(ctx, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockLedgerService) GetRevision(ctx context.Context, documentID string, seq int) (*model.Revision, error) {
	args := m.Called(ctx, documentID, seq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockLedgerService) GetRevisionByID(ctx context.Context, id string) (*model.Revision, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Revision), args.Error(1)
}

func (m *MockLedgerService) ListRevisions(ctx context.Context, documentID string, limit, offset int) (*service.ListResult[model.Revision], error) {
	args := m.Called(ctx, documentID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Revision]), args.Error(1)
}
