package postgres

import (
	"context"
	"database/sql"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// EventPostgres is a PostgreSQL implementation of repository.EventRepository.
// The events table rejects UPDATE and DELETE through a trigger.
type EventPostgres struct {
	db DBTX
}

// NewEventPostgres creates a new EventPostgres repository.
func NewEventPostgres(db DBTX) *EventPostgres {
	return &EventPostgres{db: db}
}

var _ repository.EventRepository = (*EventPostgres)(nil)

const eventColumns = `seq, id, document_id, revision_id, kind, actor, description, transmittal_id, occurred_at`

// Append inserts an event and sets its Seq.
func (r *EventPostgres) Append(ctx context.Context, ev *model.Event) error {
	const q = `
		INSERT INTO events (id, document_id, revision_id, kind, actor, description, transmittal_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING seq
	`
	row := r.db.QueryRowContext(ctx, q,
		ev.ID,
		ev.DocumentID,
		nullString(ev.RevisionID),
		string(ev.Kind),
		ev.Actor,
		ev.Description,
		nullString(ev.TransmittalID),
		ev.OccurredAt,
	)
	if err := row.Scan(&ev.Seq); err != nil {
		return mapError(err)
	}
	return nil
}

// LastOccurredAt returns the latest event time of a document.
func (r *EventPostgres) LastOccurredAt(ctx context.Context, documentID string) (time.Time, error) {
	const q = `SELECT MAX(occurred_at) FROM events WHERE document_id = $1`
	var last sql.NullTime
	if err := r.db.QueryRowContext(ctx, q, documentID).Scan(&last); err != nil {
		return time.Time{}, mapError(err)
	}
	return last.Time, nil
}

// Exists reports whether a correlated event of kind is already recorded.
func (r *EventPostgres) Exists(ctx context.Context, documentID, transmittalID string, kind model.EventKind) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM events WHERE document_id = $1 AND transmittal_id = $2 AND kind = $3)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, documentID, transmittalID, string(kind)).Scan(&ok); err != nil {
		return false, mapError(err)
	}
	return ok, nil
}

// ListByDocument returns the timeline of a document.
func (r *EventPostgres) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) (*repository.PageResult[model.Event], error) {
	const qCount = `SELECT COUNT(*) FROM events WHERE document_id = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount, documentID).Scan(&total); err != nil {
		return nil, mapError(err)
	}

	const qList = `
		SELECT ` + eventColumns + `
		FROM events
		WHERE document_id = $1
		ORDER BY occurred_at ASC, seq ASC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, qList, documentID, limitArg(pq), offsetArg(pq))
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	items := make([]model.Event, 0)
	for rows.Next() {
		var (
			ev          model.Event
			kind        string
			revisionID  sql.NullString
			transmittal sql.NullString
		)
		if err := rows.Scan(
			&ev.Seq,
			&ev.ID,
			&ev.DocumentID,
			&revisionID,
			&kind,
			&ev.Actor,
			&ev.Description,
			&transmittal,
			&ev.OccurredAt,
		); err != nil {
			return nil, mapError(err)
		}
		ev.Kind = model.EventKind(kind)
		ev.RevisionID = revisionID.String
		ev.TransmittalID = transmittal.String
		items = append(items, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err)
	}
	return &repository.PageResult[model.Event]{Items: items, Total: total}, nil
}
