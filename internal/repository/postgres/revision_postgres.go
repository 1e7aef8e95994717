package postgres

import (
	"context"
	"database/sql"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// RevisionPostgres is a PostgreSQL implementation of repository.RevisionRepository.
type RevisionPostgres struct {
	db DBTX
}

// NewRevisionPostgres creates a new RevisionPostgres repository.
func NewRevisionPostgres(db DBTX) *RevisionPostgres {
	return &RevisionPostgres{db: db}
}

var _ repository.RevisionRepository = (*RevisionPostgres)(nil)

const revisionColumns = `id, document_id, sequence, label, title, doc_type, status, file_ref, content_type, size,
	uploaded_by, uploaded_at, source_revision_id, source_org_id, source_document_id, source_uploaded_at`

func scanRevision(row scanner) (*model.Revision, error) {
	var (
		rev       model.Revision
		status    string
		srcRev    sql.NullString
		srcOrg    sql.NullString
		srcDoc    sql.NullString
		srcUpload sql.NullTime
	)
	if err := row.Scan(
		&rev.ID,
		&rev.DocumentID,
		&rev.Sequence,
		&rev.Label,
		&rev.Title,
		&rev.Type,
		&status,
		&rev.FileRef,
		&rev.ContentType,
		&rev.Size,
		&rev.UploadedBy,
		&rev.UploadedAt,
		&srcRev,
		&srcOrg,
		&srcDoc,
		&srcUpload,
	); err != nil {
		return nil, mapError(err)
	}
	rev.Status = model.Status(status)
	if srcRev.Valid {
		rev.Source = &model.Provenance{
			RevisionID: srcRev.String,
			OrgID:      srcOrg.String,
			DocumentID: srcDoc.String,
			UploadedAt: srcUpload.Time,
		}
	}
	return &rev, nil
}

// Create inserts a revision row.
func (r *RevisionPostgres) Create(ctx context.Context, rev *model.Revision) error {
	const q = `
		INSERT INTO revisions (` + revisionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	var (
		srcRev, srcOrg, srcDoc sql.NullString
		srcUpload              sql.NullTime
	)
	if rev.Source != nil {
		srcRev = nullString(rev.Source.RevisionID)
		srcOrg = nullString(rev.Source.OrgID)
		srcDoc = nullString(rev.Source.DocumentID)
		srcUpload = sql.NullTime{Time: rev.Source.UploadedAt, Valid: true}
	}
	_, err := r.db.ExecContext(ctx, q,
		rev.ID,
		rev.DocumentID,
		rev.Sequence,
		rev.Label,
		rev.Title,
		rev.Type,
		string(rev.Status),
		rev.FileRef,
		rev.ContentType,
		rev.Size,
		rev.UploadedBy,
		rev.UploadedAt,
		srcRev,
		srcOrg,
		srcDoc,
		srcUpload,
	)
	return mapError(err)
}

// FindByID fetches a revision by its ID.
func (r *RevisionPostgres) FindByID(ctx context.Context, id string) (*model.Revision, error) {
	const q = `SELECT ` + revisionColumns + ` FROM revisions WHERE id = $1`
	return scanRevision(r.db.QueryRowContext(ctx, q, id))
}

// FindBySequence fetches a revision by document and sequence.
func (r *RevisionPostgres) FindBySequence(ctx context.Context, documentID string, seq int) (*model.Revision, error) {
	const q = `SELECT ` + revisionColumns + ` FROM revisions WHERE document_id = $1 AND sequence = $2`
	return scanRevision(r.db.QueryRowContext(ctx, q, documentID, seq))
}

// FindBySource fetches the revision of a document created from a source revision.
func (r *RevisionPostgres) FindBySource(ctx context.Context, documentID, sourceRevisionID string) (*model.Revision, error) {
	const q = `SELECT ` + revisionColumns + ` FROM revisions WHERE document_id = $1 AND source_revision_id = $2`
	return scanRevision(r.db.QueryRowContext(ctx, q, documentID, sourceRevisionID))
}

// MaxSequence returns the highest allocated sequence, 0 for none.
func (r *RevisionPostgres) MaxSequence(ctx context.Context, documentID string) (int, error) {
	const q = `SELECT COALESCE(MAX(sequence), 0) FROM revisions WHERE document_id = $1`
	var max int
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&max); err != nil {
		return 0, mapError(err)
	}
	return max, nil
}

// ListByDocument returns revisions ordered by sequence with a total count.
func (r *RevisionPostgres) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) (*repository.PageResult[model.Revision], error) {
	const qCount = `SELECT COUNT(*) FROM revisions WHERE document_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, documentID).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	const qList = `
		SELECT ` + revisionColumns + `
		FROM revisions
		WHERE document_id = $1
		ORDER BY sequence ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, documentID, limitArg(pq), offsetArg(pq))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]model.Revision, 0)
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *rev)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return &repository.PageResult[model.Revision]{Items: items, Total: total}, nil
}

// SetStatus updates the status of a revision.
func (r *RevisionPostgres) SetStatus(ctx context.Context, id string, status model.Status) error {
	const q = `UPDATE revisions SET status = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, string(status))
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}
