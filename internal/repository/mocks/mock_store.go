package mocks

import (
	"context"

	"docregister/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockStore serves Docs for both committed reads and transactions. WithTx
// and Ping are mocked; a WithTx expectation returning nil runs fn.
type MockStore struct {
	mock.Mock
	Docs *MockDocumentRepository
}

func NewMockStore() *MockStore {
	return &MockStore{Docs: new(MockDocumentRepository)}
}

func (m *MockStore) Documents() repository.DocumentRepository { return m.Docs }

func (m *MockStore) Revisions() repository.RevisionRepository {
	args := m.Called()
	return args.Get(0).(repository.RevisionRepository)
}

func (m *MockStore) Events() repository.EventRepository {
	args := m.Called()
	return args.Get(0).(repository.EventRepository)
}

func (m *MockStore) Transmittals() repository.TransmittalRepository {
	args := m.Called()
	return args.Get(0).(repository.TransmittalRepository)
}

func (m *MockStore) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, m)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
