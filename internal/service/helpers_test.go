package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"
	"docregister/internal/repository/memory"

	"github.com/stretchr/testify/require"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func newTestClock() *testClock {
	return &testClock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type testEnv struct {
	store        repository.Store
	mem          *memory.Store
	clock        *testClock
	ledger       LedgerService
	events       EventService
	register     RegisterService
	transmittals TransmittalService
}

func newTestEnv(t *testing.T, opts ...Option) *testEnv {
	t.Helper()
	mem := memory.New()
	return newTestEnvOn(t, mem, mem, opts...)
}

func newTestEnvOn(t *testing.T, store repository.Store, mem *memory.Store, opts ...Option) *testEnv {
	t.Helper()
	clock := newTestClock()
	all := append([]Option{WithClock(clock.Now), WithRetry(5, time.Millisecond)}, opts...)
	return &testEnv{
		store:        store,
		mem:          mem,
		clock:        clock,
		ledger:       NewLedgerService(store, all...),
		events:       NewEventService(store, all...),
		register:     NewRegisterService(store, all...),
		transmittals: NewTransmittalService(store, all...),
	}
}

func revInput(by string) model.RevisionInput {
	return model.RevisionInput{Title: "General arrangement", Type: "drawing", FileRef: "blobs/" + by, UploadedBy: by}
}

func (e *testEnv) create(t *testing.T, org, number string) (*model.Document, *model.Revision) {
	t.Helper()
	doc, rev, err := e.ledger.CreateDocument(context.Background(), CreateDocumentInput{
		OrgID: org, Number: number, Revision: revInput("alice"),
	})
	require.NoError(t, err)
	return doc, rev
}

func (e *testEnv) timeline(t *testing.T, documentID string) []model.Event {
	t.Helper()
	res, err := e.events.Timeline(context.Background(), documentID, 0, 0)
	require.NoError(t, err)
	return res.Items
}

func countKind(events []model.Event, kind model.EventKind) int {
	n := 0
	for _, ev := range events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

// faultStore wraps a store and lets tests interfere with transactions.
type faultStore struct {
	repository.Store
	mu sync.Mutex
	// beforeTx runs before every transaction; a non-nil error aborts it.
	beforeTx func() error
	// setItemTarget runs before TransmittalRepository.SetItemTarget inside a
	// transaction; a non-nil error fails the call.
	setItemTarget func(ctx context.Context, position int) error
}

func (f *faultStore) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	f.mu.Lock()
	before := f.beforeTx
	f.mu.Unlock()
	if before != nil {
		if err := before(); err != nil {
			return err
		}
	}
	return f.Store.WithTx(ctx, func(ctx context.Context, r repository.Repos) error {
		return fn(ctx, faultRepos{Repos: r, f: f})
	})
}

type faultRepos struct {
	repository.Repos
	f *faultStore
}

func (r faultRepos) Transmittals() repository.TransmittalRepository {
	return faultTransmittals{TransmittalRepository: r.Repos.Transmittals(), f: r.f}
}

type faultTransmittals struct {
	repository.TransmittalRepository
	f *faultStore
}

func (t faultTransmittals) SetItemTarget(ctx context.Context, transmittalID string, position int, documentID, revisionID string) error {
	t.f.mu.Lock()
	hook := t.f.setItemTarget
	t.f.mu.Unlock()
	if hook != nil {
		if err := hook(ctx, position); err != nil {
			return err
		}
	}
	return t.TransmittalRepository.SetItemTarget(ctx, transmittalID, position, documentID, revisionID)
}
