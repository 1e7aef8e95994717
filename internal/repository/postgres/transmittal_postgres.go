package postgres

import (
	"context"
	"database/sql"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// TransmittalPostgres is a PostgreSQL implementation of repository.TransmittalRepository.
type TransmittalPostgres struct {
	db DBTX
}

// NewTransmittalPostgres creates a new TransmittalPostgres repository.
func NewTransmittalPostgres(db DBTX) *TransmittalPostgres {
	return &TransmittalPostgres{db: db}
}

var _ repository.TransmittalRepository = (*TransmittalPostgres)(nil)

const transmittalColumns = `id, key, number, description, sender_org, recipient_org, created_by, created_at, state, completed_at`

// Create inserts the transmittal header and its items. Callers run it
// inside a transaction so both land together.
func (r *TransmittalPostgres) Create(ctx context.Context, t *model.Transmittal) error {
	const qHeader = `
		INSERT INTO transmittals (` + transmittalColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	var completed sql.NullTime
	if t.CompletedAt != nil {
		completed = sql.NullTime{Time: *t.CompletedAt, Valid: true}
	}
	if _, err := r.db.ExecContext(ctx, qHeader,
		t.ID,
		t.Key,
		t.Number,
		t.Description,
		t.SenderOrg,
		t.RecipientOrg,
		t.CreatedBy,
		t.CreatedAt,
		string(t.State),
		completed,
	); err != nil {
		return mapError(err)
	}

	const qItem = `
		INSERT INTO transmittal_items (transmittal_id, position, revision_id, source_document_id, document_number, project_id)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	for _, it := range t.Items {
		if _, err := r.db.ExecContext(ctx, qItem,
			t.ID,
			it.Position,
			it.RevisionID,
			it.SourceDocumentID,
			it.DocumentNumber,
			it.ProjectID,
		); err != nil {
			return mapError(err)
		}
	}
	return nil
}

func scanTransmittal(row scanner) (*model.Transmittal, error) {
	var (
		t         model.Transmittal
		state     string
		completed sql.NullTime
	)
	if err := row.Scan(
		&t.ID,
		&t.Key,
		&t.Number,
		&t.Description,
		&t.SenderOrg,
		&t.RecipientOrg,
		&t.CreatedBy,
		&t.CreatedAt,
		&state,
		&completed,
	); err != nil {
		return nil, mapError(err)
	}
	t.State = model.TransmittalState(state)
	if completed.Valid {
		at := completed.Time
		t.CompletedAt = &at
	}
	return &t, nil
}

func (r *TransmittalPostgres) loadItems(ctx context.Context, t *model.Transmittal) error {
	const q = `
		SELECT position, revision_id, source_document_id, document_number, project_id, target_document_id, target_revision_id
		FROM transmittal_items
		WHERE transmittal_id = $1
		ORDER BY position ASC
	`
	rows, err := r.db.QueryContext(ctx, q, t.ID)
	if err != nil {
		return mapError(err)
	}
	defer rows.Close()

	t.Items = make([]model.TransmittalItem, 0)
	for rows.Next() {
		var (
			it                 model.TransmittalItem
			targetDoc, targetR sql.NullString
		)
		if err := rows.Scan(
			&it.Position,
			&it.RevisionID,
			&it.SourceDocumentID,
			&it.DocumentNumber,
			&it.ProjectID,
			&targetDoc,
			&targetR,
		); err != nil {
			return mapError(err)
		}
		it.TargetDocumentID = targetDoc.String
		it.TargetRevisionID = targetR.String
		t.Items = append(t.Items, it)
	}
	return mapError(rows.Err())
}

func (r *TransmittalPostgres) findOne(ctx context.Context, q string, arg any) (*model.Transmittal, error) {
	t, err := scanTransmittal(r.db.QueryRowContext(ctx, q, arg))
	if err != nil {
		return nil, err
	}
	if err := r.loadItems(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// FindByID fetches a transmittal with its items.
func (r *TransmittalPostgres) FindByID(ctx context.Context, id string) (*model.Transmittal, error) {
	const q = `SELECT ` + transmittalColumns + ` FROM transmittals WHERE id = $1`
	return r.findOne(ctx, q, id)
}

// FindByKey fetches a transmittal by its natural key.
func (r *TransmittalPostgres) FindByKey(ctx context.Context, key string) (*model.Transmittal, error) {
	const q = `SELECT ` + transmittalColumns + ` FROM transmittals WHERE key = $1`
	return r.findOne(ctx, q, key)
}

// SetItemTarget records the delivered document and revision of an item.
func (r *TransmittalPostgres) SetItemTarget(ctx context.Context, transmittalID string, position int, documentID, revisionID string) error {
	const q = `
		UPDATE transmittal_items
		SET target_document_id = $3, target_revision_id = $4
		WHERE transmittal_id = $1 AND position = $2
	`
	res, err := r.db.ExecContext(ctx, q, transmittalID, position, documentID, revisionID)
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

// MarkComplete flips a pending transmittal to complete. Completing twice is a no-op.
func (r *TransmittalPostgres) MarkComplete(ctx context.Context, id string, at time.Time) error {
	const q = `
		UPDATE transmittals
		SET state = 'complete', completed_at = COALESCE(completed_at, $2)
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, at)
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

// ListByOrg returns complete transmittals of one direction, newest first.
func (r *TransmittalPostgres) ListByOrg(ctx context.Context, orgID string, dir model.Direction, pq repository.PageQuery) (*repository.PageResult[model.Transmittal], error) {
	column := "sender_org"
	if dir == model.DirectionReceived {
		column = "recipient_org"
	}

	qCount := `SELECT COUNT(*) FROM transmittals WHERE ` + column + ` = $1 AND state = 'complete'`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, orgID).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	qList := `
		SELECT ` + transmittalColumns + `
		FROM transmittals
		WHERE ` + column + ` = $1 AND state = 'complete'
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, orgID, limitArg(pq), offsetArg(pq))
	if err != nil {
		return nil, mapError(err)
	}

	items := make([]model.Transmittal, 0)
	for rows.Next() {
		t, err := scanTransmittal(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, mapError(err)
	}
	rows.Close()

	for i := range items {
		if err := r.loadItems(ctx, &items[i]); err != nil {
			return nil, err
		}
	}
	return &repository.PageResult[model.Transmittal]{Items: items, Total: total}, nil
}
