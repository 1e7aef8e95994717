package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"
	repoMocks "docregister/internal/repository/mocks"
	"docregister/internal/repository/postgres"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStorageErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		setupMocks func(store *repoMocks.MockStore)
		call       func(ctx context.Context, store repository.Store) error
		wantErr    error
	}{
		{
			name: "list unavailable",
			setupMocks: func(store *repoMocks.MockStore) {
				store.Docs.On("ListByOrg", mock.Anything, "org-a", "", repository.PageQuery{Limit: 10}).
					Return(nil, fmt.Errorf("%w: connection refused", repository.ErrUnavailable))
			},
			call: func(ctx context.Context, store repository.Store) error {
				_, err := NewRegisterService(store).DocumentsForOrg(ctx, "org-a", "", 10, 0)
				return err
			},
			wantErr: ErrStorageUnavailable,
		},
		{
			name: "read deadline",
			setupMocks: func(store *repoMocks.MockStore) {
				store.Docs.On("FindByID", mock.Anything, "d1").Return(nil, context.DeadlineExceeded)
			},
			call: func(ctx context.Context, store repository.Store) error {
				_, err := NewLedgerService(store).GetDocument(ctx, "d1")
				return err
			},
			wantErr: ErrStorageUnavailable,
		},
		{
			name: "missing document",
			setupMocks: func(store *repoMocks.MockStore) {
				store.Docs.On("FindByID", mock.Anything, "d1").Return(nil, repository.ErrNotFound)
			},
			call: func(ctx context.Context, store repository.Store) error {
				_, err := NewLedgerService(store).GetDocument(ctx, "d1")
				return err
			},
			wantErr: ErrDocumentNotFound,
		},
		{
			name: "transaction unavailable",
			setupMocks: func(store *repoMocks.MockStore) {
				store.On("WithTx", mock.Anything, mock.Anything).Return(repository.ErrUnavailable).Once()
			},
			call: func(ctx context.Context, store repository.Store) error {
				_, _, err := NewLedgerService(store).CreateDocument(ctx, CreateDocumentInput{
					OrgID: "org-a", Number: "100", Revision: revInput("alice"),
				})
				return err
			},
			wantErr: ErrStorageUnavailable,
		},
		{
			name: "conflict retried then given up",
			setupMocks: func(store *repoMocks.MockStore) {
				store.On("WithTx", mock.Anything, mock.Anything).Return(repository.ErrConflict).Times(3)
			},
			call: func(ctx context.Context, store repository.Store) error {
				_, err := NewEventService(store, WithRetry(2, time.Millisecond)).Append(ctx, AppendEventInput{
					DocumentID: "d1", Kind: model.EventDownload, Actor: "bob",
				})
				return err
			},
			wantErr: ErrStorageUnavailable,
		},
		{
			name: "append to unknown document",
			setupMocks: func(store *repoMocks.MockStore) {
				store.On("WithTx", mock.Anything, mock.Anything).Return(nil).Once()
				store.Docs.On("LockByID", mock.Anything, "d1").Return(nil, repository.ErrNotFound)
			},
			call: func(ctx context.Context, store repository.Store) error {
				_, err := NewEventService(store).Append(ctx, AppendEventInput{
					DocumentID: "d1", Kind: model.EventDownload, Actor: "bob",
				})
				return err
			},
			wantErr: ErrDocumentNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := repoMocks.NewMockStore()
			tt.setupMocks(store)

			err := tt.call(context.Background(), store)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			store.AssertExpectations(t)
			store.Docs.AssertExpectations(t)
		})
	}
}

func TestTransmittalService_SendMalformedRevisionIDOnPostgres(t *testing.T) {
	db, dbMock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	dbMock.ExpectQuery("FROM revisions WHERE id").
		WithArgs("nope").
		WillReturnError(&pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "nope"`})

	svc := NewTransmittalService(postgres.NewStore(db))
	tr, err := svc.Send(context.Background(), SendInput{
		SenderOrg: "org-a", RecipientOrg: "org-b", RevisionIDs: []string{"nope"}, CreatedBy: "alice",
	})

	assert.Nil(t, tr)
	assert.ErrorIs(t, err, ErrRevisionNotFound)
	assert.NotErrorIs(t, err, ErrStorageUnavailable)
	assert.NoError(t, dbMock.ExpectationsWereMet())
}
