package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var revisionCols = []string{
	"id", "document_id", "sequence", "label", "title", "doc_type", "status", "file_ref", "content_type", "size",
	"uploaded_by", "uploaded_at", "source_revision_id", "source_org_id", "source_document_id", "source_uploaded_at",
}

func TestRevisionPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRevisionPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("with provenance", func(t *testing.T) {
		rev := &model.Revision{
			ID: "rev-b", DocumentID: "doc-b", Sequence: 1, Title: "Plan", Status: "issued",
			FileRef: "blobs/x", UploadedBy: "bob", UploadedAt: now,
			Source: &model.Provenance{RevisionID: "rev-a", OrgID: "org-a", DocumentID: "doc-a", UploadedAt: now.Add(-time.Hour)},
		}
		mock.ExpectExec("INSERT INTO revisions").
			WithArgs("rev-b", "doc-b", 1, "", "Plan", "", "issued", "blobs/x", "", int64(0), "bob", now,
				"rev-a", "org-a", "doc-a", now.Add(-time.Hour)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Create(ctx, rev))
	})

	t.Run("duplicate sequence", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO revisions").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "revisions_document_sequence_key"})

		err := repo.Create(ctx, &model.Revision{ID: "rev-c", DocumentID: "doc-b", Sequence: 1, UploadedAt: now})
		assert.ErrorIs(t, err, repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionPostgres_FindBySequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRevisionPostgres(db)
	ctx := context.Background()
	now := time.Now().UTC()

	t.Run("copied revision", func(t *testing.T) {
		rows := sqlmock.NewRows(revisionCols).AddRow(
			"rev-b", "doc-b", 2, "B", "Plan", "drawing", "issued", "blobs/x", "application/pdf", 10,
			"bob", now, "rev-a", "org-a", "doc-a", now.Add(-time.Hour))
		mock.ExpectQuery("SELECT (.+) FROM revisions WHERE document_id = (.+) AND sequence = ").
			WithArgs("doc-b", 2).
			WillReturnRows(rows)

		rev, err := repo.FindBySequence(ctx, "doc-b", 2)
		require.NoError(t, err)
		require.NotNil(t, rev.Source)
		assert.Equal(t, "rev-a", rev.Source.RevisionID)
		assert.Equal(t, now.Add(-time.Hour), rev.OriginatedAt())
	})

	t.Run("missing", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM revisions WHERE document_id = (.+) AND sequence = ").
			WithArgs("doc-b", 9).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.FindBySequence(ctx, "doc-b", 9)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionPostgres_MaxSequence(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT COALESCE(.+) FROM revisions").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(4))

	max, err := NewRevisionPostgres(db).MaxSequence(context.Background(), "doc-1")
	require.NoError(t, err)
	assert.Equal(t, 4, max)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevisionPostgres_SetStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("UPDATE revisions SET status").
		WithArgs("missing", "superseded").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewRevisionPostgres(db).SetStatus(context.Background(), "missing", "superseded")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
