package repository

import (
	"context"
	"time"

	"docregister/internal/model"
)

// DocumentRepository defines data access for documents using SQL queries only.
// No business logic here, only persistence operations.
type DocumentRepository interface {
	// Create inserts a new document row. Returns ErrDuplicate when
	// (org, number) is already taken.
	Create(ctx context.Context, doc *model.Document) error

	// FindByID returns a document by its ID.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// FindByNumber returns the document registered under (org, number).
	FindByNumber(ctx context.Context, orgID, number string) (*model.Document, error)

	// LockByID and LockByNumber read the document row and hold a row lock
	// until the surrounding transaction ends. Outside a transaction they
	// behave as the Find variants.
	LockByID(ctx context.Context, id string) (*model.Document, error)
	LockByNumber(ctx context.Context, orgID, number string) (*model.Document, error)

	// AdvanceCurrent moves the current revision pointer to a revision with a
	// strictly higher sequence. Returns ErrConflict when the stored sequence
	// is not lower than seq.
	AdvanceCurrent(ctx context.Context, documentID, revisionID string, seq int) error

	// ListByOrg returns the register of an organisation ordered by number.
	// An empty projectID matches every project.
	ListByOrg(ctx context.Context, orgID, projectID string, pq PageQuery) (*PageResult[model.Document], error)
}

// RevisionRepository defines data access for revisions. Revisions are
// write-once apart from the policy-driven status change in SetStatus.
type RevisionRepository interface {
	// Create inserts a revision. Returns ErrDuplicate when the sequence or the
	// provenance is already present on the document.
	Create(ctx context.Context, rev *model.Revision) error

	FindByID(ctx context.Context, id string) (*model.Revision, error)
	FindBySequence(ctx context.Context, documentID string, seq int) (*model.Revision, error)

	// FindBySource returns the revision of documentID created from the
	// given source revision, if any.
	FindBySource(ctx context.Context, documentID, sourceRevisionID string) (*model.Revision, error)

	// MaxSequence returns the highest sequence of the document, 0 when empty.
	MaxSequence(ctx context.Context, documentID string) (int, error)

	// ListByDocument returns revisions ordered by sequence ascending.
	ListByDocument(ctx context.Context, documentID string, pq PageQuery) (*PageResult[model.Revision], error)

	SetStatus(ctx context.Context, id string, status model.Status) error
}

// EventRepository is the append-only event log.
type EventRepository interface {
	// Append stores the event and fills in its Seq.
	Append(ctx context.Context, ev *model.Event) error

	// LastOccurredAt returns the timestamp of the latest event of the
	// document, or the zero time.
	LastOccurredAt(ctx context.Context, documentID string) (time.Time, error)

	// Exists reports whether the document already has an event of kind
	// correlated to the transmittal.
	Exists(ctx context.Context, documentID, transmittalID string, kind model.EventKind) (bool, error)

	// ListByDocument returns events ordered by (occurred_at, seq) ascending.
	ListByDocument(ctx context.Context, documentID string, pq PageQuery) (*PageResult[model.Event], error)
}

// TransmittalRepository stores transmittals and their snapshot items.
type TransmittalRepository interface {
	// Create inserts a pending transmittal with its items. Returns
	// ErrDuplicate when the natural key already exists.
	Create(ctx context.Context, t *model.Transmittal) error

	FindByID(ctx context.Context, id string) (*model.Transmittal, error)
	FindByKey(ctx context.Context, key string) (*model.Transmittal, error)

	// SetItemTarget records where the item at position was delivered.
	SetItemTarget(ctx context.Context, transmittalID string, position int, documentID, revisionID string) error

	// MarkComplete flips a pending transmittal to complete.
	MarkComplete(ctx context.Context, id string, at time.Time) error

	// ListByOrg returns complete transmittals sent or received by the
	// organisation, newest first.
	ListByOrg(ctx context.Context, orgID string, dir model.Direction, pq PageQuery) (*PageResult[model.Transmittal], error)
}

// PageQuery holds limit/offset pagination parameters.
// A Limit of zero or less returns every remaining row.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
