// Package service is the document register consistency engine: the
// revision ledger, the event recorder, the transmittal engine and the
// read-side register views.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docregister/internal/model"
	"docregister/internal/repository"
)

const (
	defaultStorageTimeout = 5 * time.Second
	defaultRetryAttempts  = 5
	defaultRetryBase      = 20 * time.Millisecond
)

// ListResult is the service-level DTO for paginated lists.
type ListResult[T any] struct {
	Items []T `json:"data"`
	Total int `json:"total"`
}

func listResult[T any](res *repository.PageResult[T]) *ListResult[T] {
	items := res.Items
	if items == nil {
		items = []T{}
	}
	return &ListResult[T]{Items: items, Total: res.Total}
}

// Option configures a service.
type Option func(*core)

// WithPolicy sets the register policy.
func WithPolicy(p Policy) Option { return func(c *core) { c.policy = p } }

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option { return func(c *core) { c.clock = now } }

// WithStorageTimeout bounds every storage round trip.
func WithStorageTimeout(d time.Duration) Option {
	return func(c *core) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithRetry sets how often a transaction is retried after a write conflict.
func WithRetry(attempts int, base time.Duration) Option {
	return func(c *core) {
		if attempts >= 0 {
			c.retryAttempts = uint64(attempts)
		}
		if base > 0 {
			c.retryBase = base
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *core) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics sets the prometheus collectors.
func WithMetrics(m *Metrics) Option { return func(c *core) { c.metrics = m } }

// core carries the collaborators shared by every service and the
// transaction-level building blocks they are composed from.
type core struct {
	store         repository.Store
	policy        Policy
	clock         func() time.Time
	timeout       time.Duration
	retryAttempts uint64
	retryBase     time.Duration
	log           *zap.Logger
	metrics       *Metrics
	tracer        trace.Tracer
}

func newCore(store repository.Store, component string, opts ...Option) *core {
	c := &core{
		store:         store,
		policy:        DefaultPolicy(),
		clock:         time.Now,
		timeout:       defaultStorageTimeout,
		retryAttempts: defaultRetryAttempts,
		retryBase:     defaultRetryBase,
		log:           zap.NewNop(),
		tracer:        otel.Tracer("docregister/service"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("component", component))
	return c
}

// now is truncated to the precision of the SQL store.
func (c *core) now() time.Time {
	return c.clock().UTC().Truncate(time.Microsecond)
}

// start opens a span for op. The returned func ends it, records err on the
// span and counts the outcome.
func (c *core) start(ctx context.Context, op string) (context.Context, func(*error)) {
	ctx, span := c.tracer.Start(ctx, op)
	return ctx, func(errp *error) {
		err := *errp
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		c.metrics.observe(op, err)
	}
}

func (c *core) backoff() retry.Backoff {
	b := retry.NewExponential(c.retryBase)
	b = retry.WithJitterPercent(25, b)
	return retry.WithMaxRetries(c.retryAttempts, b)
}

// tx runs fn in one store transaction bounded by the storage timeout. The
// whole transaction is retried when the store reports a lost race.
func (c *core) tx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	err := retry.Do(ctx, c.backoff(), func(ctx context.Context) error {
		tctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		err := c.store.WithTx(tctx, fn)
		if errors.Is(err, repository.ErrConflict) {
			c.metrics.retried()
			c.log.Debug("transaction conflict, retrying", zap.Error(err))
			return retry.RetryableError(err)
		}
		return err
	})
	return storageErr(err)
}

// read runs fn against committed state bounded by the storage timeout.
func (c *core) read(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	tctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return storageErr(fn(tctx, c.store))
}

func validateRevisionInput(in model.RevisionInput) error {
	if in.FileRef == "" {
		return invalid("file reference is required")
	}
	if in.UploadedBy == "" {
		return invalid("uploader is required")
	}
	if in.Size < 0 {
		return invalid("size must not be negative")
	}
	return nil
}

func (c *core) newRevision(documentID string, seq int, in model.RevisionInput, src *model.Provenance) (*model.Revision, error) {
	status, err := c.policy.resolve(in.Status)
	if err != nil {
		return nil, err
	}
	return &model.Revision{
		ID:          uuid.NewString(),
		DocumentID:  documentID,
		Sequence:    seq,
		Label:       in.Label,
		Title:       in.Title,
		Type:        in.Type,
		Status:      status,
		FileRef:     in.FileRef,
		ContentType: in.ContentType,
		Size:        in.Size,
		UploadedBy:  in.UploadedBy,
		UploadedAt:  c.now(),
		Source:      src,
	}, nil
}

// createDocumentTx inserts a document with its first revision and points
// current at it. repository.ErrDuplicate is returned as is.
func (c *core) createDocumentTx(ctx context.Context, r repository.Repos, orgID, projectID, number string, in model.RevisionInput, src *model.Provenance) (*model.Document, *model.Revision, error) {
	doc := &model.Document{
		ID:        uuid.NewString(),
		OrgID:     orgID,
		ProjectID: projectID,
		Number:    number,
		CreatedAt: c.now(),
	}
	rev, err := c.newRevision(doc.ID, 1, in, src)
	if err != nil {
		return nil, nil, err
	}
	if err := r.Documents().Create(ctx, doc); err != nil {
		return nil, nil, err
	}
	if err := r.Revisions().Create(ctx, rev); err != nil {
		return nil, nil, err
	}
	if err := r.Documents().AdvanceCurrent(ctx, doc.ID, rev.ID, rev.Sequence); err != nil {
		return nil, nil, err
	}
	doc.CurrentRevisionID = rev.ID
	doc.CurrentSequence = rev.Sequence
	return doc, rev, nil
}

// appendRevisionTx allocates the next sequence of a locked document, stores
// the revision and moves current forward. An arrival that originated before
// the revision it follows is still appended and made current; the timeline
// gets a revision_superseded entry describing it.
func (c *core) appendRevisionTx(ctx context.Context, r repository.Repos, doc *model.Document, in model.RevisionInput, src *model.Provenance) (*model.Revision, error) {
	max, err := r.Revisions().MaxSequence(ctx, doc.ID)
	if err != nil {
		return nil, err
	}

	var prev *model.Revision
	if doc.CurrentRevisionID != "" {
		if prev, err = r.Revisions().FindByID(ctx, doc.CurrentRevisionID); err != nil {
			return nil, err
		}
	}

	rev, err := c.newRevision(doc.ID, max+1, in, src)
	if err != nil {
		return nil, err
	}
	if err := r.Revisions().Create(ctx, rev); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: %v", repository.ErrConflict, err)
		}
		return nil, err
	}
	if err := r.Documents().AdvanceCurrent(ctx, doc.ID, rev.ID, rev.Sequence); err != nil {
		return nil, err
	}
	doc.CurrentRevisionID = rev.ID
	doc.CurrentSequence = rev.Sequence

	if prev == nil {
		return rev, nil
	}

	if rev.OriginatedAt().Before(prev.OriginatedAt()) {
		c.metrics.stale()
		c.log.Info("appended revision predates current",
			zap.String("document_id", doc.ID),
			zap.Int("sequence", rev.Sequence),
			zap.Int("previous_sequence", prev.Sequence),
		)
		desc := fmt.Sprintf("revision %d originated %s, before revision %d it follows (originated %s)",
			rev.Sequence, rev.OriginatedAt().Format(time.RFC3339), prev.Sequence, prev.OriginatedAt().Format(time.RFC3339))
		if err := c.appendEventTx(ctx, r, &model.Event{
			DocumentID:  doc.ID,
			RevisionID:  rev.ID,
			Kind:        model.EventRevisionSuperseded,
			Actor:       in.UploadedBy,
			Description: desc,
		}); err != nil {
			return nil, err
		}
	}

	if c.policy.supersedePrevious && prev.Status != c.policy.superseded {
		if err := r.Revisions().SetStatus(ctx, prev.ID, c.policy.superseded); err != nil {
			return nil, err
		}
		if err := c.appendEventTx(ctx, r, &model.Event{
			DocumentID:  doc.ID,
			RevisionID:  prev.ID,
			Kind:        model.EventRevisionSuperseded,
			Actor:       in.UploadedBy,
			Description: fmt.Sprintf("revision %d superseded by revision %d", prev.Sequence, rev.Sequence),
		}); err != nil {
			return nil, err
		}
	}
	return rev, nil
}

type resolveArgs struct {
	orgID, projectID, number string
	input                    model.RevisionInput
	source                   *model.Provenance
}

// resolved is the outcome of resolveOrCreateTx. replayed is true when the
// source revision had already been delivered and nothing was written.
type resolved struct {
	doc      *model.Document
	rev      *model.Revision
	created  bool
	replayed bool
}

// resolveOrCreateTx is the upsert keyed on (org, number) and, when a source
// is given, on (document, source revision).
func (c *core) resolveOrCreateTx(ctx context.Context, r repository.Repos, a resolveArgs) (resolved, error) {
	doc, err := r.Documents().LockByNumber(ctx, a.orgID, a.number)
	if errors.Is(err, repository.ErrNotFound) {
		doc, rev, err := c.createDocumentTx(ctx, r, a.orgID, a.projectID, a.number, a.input, a.source)
		if errors.Is(err, repository.ErrDuplicate) {
			// another writer created the key first; retry as an append
			return resolved{}, fmt.Errorf("%w: %v", repository.ErrConflict, err)
		}
		if err != nil {
			return resolved{}, err
		}
		return resolved{doc: doc, rev: rev, created: true}, nil
	}
	if err != nil {
		return resolved{}, err
	}

	if a.source != nil {
		existing, err := r.Revisions().FindBySource(ctx, doc.ID, a.source.RevisionID)
		if err == nil {
			return resolved{doc: doc, rev: existing, replayed: true}, nil
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return resolved{}, err
		}
	}

	rev, err := c.appendRevisionTx(ctx, r, doc, a.input, a.source)
	if err != nil {
		return resolved{}, err
	}
	return resolved{doc: doc, rev: rev}, nil
}

// appendEventTx stores ev with a timestamp strictly after the latest event
// of its document. Callers hold the document lock.
func (c *core) appendEventTx(ctx context.Context, r repository.Repos, ev *model.Event) error {
	if !ev.Kind.Valid() {
		return invalid("unknown event kind %q", ev.Kind)
	}
	last, err := r.Events().LastOccurredAt(ctx, ev.DocumentID)
	if err != nil {
		return err
	}
	at := c.now()
	if !at.After(last) {
		at = last.Add(time.Microsecond)
	}
	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	ev.OccurredAt = at
	return r.Events().Append(ctx, ev)
}

// appendOnceTx records a transmittal-correlated event unless the document
// already has one of that kind for the transmittal.
func (c *core) appendOnceTx(ctx context.Context, r repository.Repos, ev *model.Event) error {
	ok, err := r.Events().Exists(ctx, ev.DocumentID, ev.TransmittalID, ev.Kind)
	if err != nil || ok {
		return err
	}
	return c.appendEventTx(ctx, r, ev)
}
