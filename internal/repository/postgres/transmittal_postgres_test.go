package postgres

import (
	"context"
	"testing"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	transmittalCols = []string{"id", "key", "number", "description", "sender_org", "recipient_org", "created_by", "created_at", "state", "completed_at"}
	itemCols        = []string{"position", "revision_id", "source_document_id", "document_number", "project_id", "target_document_id", "target_revision_id"}
)

func TestTransmittalPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	tr := &model.Transmittal{
		ID: "tr-1", Key: "k", Number: "TR-1", SenderOrg: "org-a", RecipientOrg: "org-b",
		CreatedBy: "alice", CreatedAt: now, State: model.TransmittalPending,
		Items: []model.TransmittalItem{
			{Position: 0, RevisionID: "rev-1", SourceDocumentID: "doc-1", DocumentNumber: "100"},
			{Position: 1, RevisionID: "rev-2", SourceDocumentID: "doc-2", DocumentNumber: "200"},
		},
	}

	mock.ExpectExec("INSERT INTO transmittals").
		WithArgs("tr-1", "k", "TR-1", "", "org-a", "org-b", "alice", now, "pending", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transmittal_items").
		WithArgs("tr-1", 0, "rev-1", "doc-1", "100", "").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO transmittal_items").
		WithArgs("tr-1", 1, "rev-2", "doc-2", "200", "").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, NewTransmittalPostgres(db).Create(context.Background(), tr))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransmittalPostgres_FindByKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM transmittals WHERE key = ").
		WithArgs("k").
		WillReturnRows(sqlmock.NewRows(transmittalCols).
			AddRow("tr-1", "k", "TR-1", "", "org-a", "org-b", "alice", now, "complete", now))
	mock.ExpectQuery("FROM transmittal_items").
		WithArgs("tr-1").
		WillReturnRows(sqlmock.NewRows(itemCols).
			AddRow(0, "rev-1", "doc-1", "100", "", "doc-9", "rev-9").
			AddRow(1, "rev-2", "doc-2", "200", "", nil, nil))

	tr, err := NewTransmittalPostgres(db).FindByKey(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, model.TransmittalComplete, tr.State)
	require.NotNil(t, tr.CompletedAt)
	require.Len(t, tr.Items, 2)
	assert.Equal(t, "doc-9", tr.Items[0].TargetDocumentID)
	assert.Empty(t, tr.Items[1].TargetRevisionID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransmittalPostgres_SetItemTargetAndComplete(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewTransmittalPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	mock.ExpectExec("UPDATE transmittal_items").
		WithArgs("tr-1", 0, "doc-9", "rev-9").
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.SetItemTarget(ctx, "tr-1", 0, "doc-9", "rev-9"))

	mock.ExpectExec("UPDATE transmittals").
		WithArgs("tr-1", now).
		WillReturnResult(sqlmock.NewResult(0, 1))
	assert.NoError(t, repo.MarkComplete(ctx, "tr-1", now))

	mock.ExpectExec("UPDATE transmittals").
		WithArgs("missing", now).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.MarkComplete(ctx, "missing", now), repository.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransmittalPostgres_ListByOrg(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT COUNT(.+) FROM transmittals WHERE recipient_org = ").
		WithArgs("org-b").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("FROM transmittals (.+) ORDER BY created_at DESC").
		WithArgs("org-b", 10, 0).
		WillReturnRows(sqlmock.NewRows(transmittalCols).
			AddRow("tr-1", "k", "TR-1", "", "org-a", "org-b", "alice", now, "complete", now))
	mock.ExpectQuery("FROM transmittal_items").
		WithArgs("tr-1").
		WillReturnRows(sqlmock.NewRows(itemCols).AddRow(0, "rev-1", "doc-1", "100", "", "doc-9", "rev-9"))

	res, err := NewTransmittalPostgres(db).ListByOrg(context.Background(), "org-b", model.DirectionReceived, repository.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Items, 1)
	assert.Len(t, res.Items[0].Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
