package postgres

import (
	"context"
	"database/sql"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db DBTX
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db DBTX) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

const documentColumns = `id, org_id, project_id, number, current_revision_id, current_sequence, created_at`

func scanDocument(row scanner) (*model.Document, error) {
	var (
		d       model.Document
		current sql.NullString
	)
	if err := row.Scan(
		&d.ID,
		&d.OrgID,
		&d.ProjectID,
		&d.Number,
		&current,
		&d.CurrentSequence,
		&d.CreatedAt,
	); err != nil {
		return nil, mapError(err)
	}
	d.CurrentRevisionID = current.String
	return &d, nil
}

// Create inserts a new document row.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) error {
	const q = `
		INSERT INTO documents (id, org_id, project_id, number, current_revision_id, current_sequence, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q,
		doc.ID,
		doc.OrgID,
		doc.ProjectID,
		doc.Number,
		nullString(doc.CurrentRevisionID),
		doc.CurrentSequence,
		doc.CreatedAt,
	)
	return mapError(err)
}

// FindByID fetches a single document by its ID.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// FindByNumber fetches a document by its natural key.
func (r *DocumentPostgres) FindByNumber(ctx context.Context, orgID, number string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE org_id = $1 AND number = $2`
	return scanDocument(r.db.QueryRowContext(ctx, q, orgID, number))
}

// LockByID reads the document row FOR UPDATE.
func (r *DocumentPostgres) LockByID(ctx context.Context, id string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE id = $1 FOR UPDATE`
	return scanDocument(r.db.QueryRowContext(ctx, q, id))
}

// LockByNumber reads the document row FOR UPDATE by natural key.
func (r *DocumentPostgres) LockByNumber(ctx context.Context, orgID, number string) (*model.Document, error) {
	const q = `SELECT ` + documentColumns + ` FROM documents WHERE org_id = $1 AND number = $2 FOR UPDATE`
	return scanDocument(r.db.QueryRowContext(ctx, q, orgID, number))
}

// AdvanceCurrent moves the pointer only when seq is higher than the stored one.
func (r *DocumentPostgres) AdvanceCurrent(ctx context.Context, documentID, revisionID string, seq int) error {
	const q = `
		UPDATE documents
		SET current_revision_id = $2, current_sequence = $3
		WHERE id = $1 AND current_sequence < $3
	`
	res, err := r.db.ExecContext(ctx, q, documentID, revisionID, seq)
	if err != nil {
		return mapError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return mapError(err)
	}
	if n == 0 {
		return repository.ErrConflict
	}
	return nil
}

// ListByOrg returns documents of one register ordered by number, with a total count.
func (r *DocumentPostgres) ListByOrg(ctx context.Context, orgID, projectID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	const qCount = `SELECT COUNT(*) FROM documents WHERE org_id = $1 AND ($2 = '' OR project_id = $2)`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, orgID, projectID).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	const qList = `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE org_id = $1 AND ($2 = '' OR project_id = $2)
		ORDER BY number ASC, id ASC
		LIMIT $3 OFFSET $4
	`
	rows, err := r.db.QueryContext(ctx, qList, orgID, projectID, limitArg(pq), offsetArg(pq))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]model.Document, 0)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}

	return &repository.PageResult[model.Document]{
		Items: items,
		Total: total,
	}, nil
}
