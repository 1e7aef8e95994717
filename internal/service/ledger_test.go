package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"docregister/internal/config"
	"docregister/internal/model"
	"docregister/internal/repository"
	"docregister/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerService_CreateDocument(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		in      CreateDocumentInput
		wantErr error
		check   func(t *testing.T, doc *model.Document, rev *model.Revision)
	}{
		{
			name: "happy path",
			in:   CreateDocumentInput{OrgID: "org-a", ProjectID: "p1", Number: " 100 ", Revision: revInput("alice")},
			check: func(t *testing.T, doc *model.Document, rev *model.Revision) {
				assert.Equal(t, "100", doc.Number)
				assert.Equal(t, 1, rev.Sequence)
				assert.Equal(t, rev.ID, doc.CurrentRevisionID)
				assert.Equal(t, model.Status("draft"), rev.Status)
				assert.Nil(t, rev.Source)
			},
		},
		{
			name: "explicit status",
			in: CreateDocumentInput{OrgID: "org-a", Number: "101", Revision: model.RevisionInput{
				FileRef: "f", UploadedBy: "alice", Status: "issued",
			}},
			check: func(t *testing.T, doc *model.Document, rev *model.Revision) {
				assert.Equal(t, model.Status("issued"), rev.Status)
			},
		},
		{
			name:    "missing number",
			in:      CreateDocumentInput{OrgID: "org-a", Number: "  ", Revision: revInput("alice")},
			wantErr: ErrInvalidInput,
		},
		{
			name:    "missing file reference",
			in:      CreateDocumentInput{OrgID: "org-a", Number: "102", Revision: model.RevisionInput{UploadedBy: "alice"}},
			wantErr: ErrInvalidInput,
		},
		{
			name: "undeclared status",
			in: CreateDocumentInput{OrgID: "org-a", Number: "103", Revision: model.RevisionInput{
				FileRef: "f", UploadedBy: "alice", Status: "approved",
			}},
			wantErr: ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			doc, rev, err := e.ledger.CreateDocument(ctx, tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				res, err := e.register.DocumentsForOrg(ctx, "org-a", "", 0, 0)
				require.NoError(t, err)
				assert.Zero(t, res.Total)
				return
			}
			require.NoError(t, err)
			tt.check(t, doc, rev)

			events := e.timeline(t, doc.ID)
			require.Len(t, events, 1)
			assert.Equal(t, model.EventUpload, events[0].Kind)
			assert.Equal(t, rev.ID, events[0].RevisionID)
			assert.Equal(t, "alice", events[0].Actor)
		})
	}
}

func TestLedgerService_CreateDocumentDuplicateNumber(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	e.create(t, "org-a", "100")

	_, _, err := e.ledger.CreateDocument(ctx, CreateDocumentInput{OrgID: "org-a", Number: "100", Revision: revInput("bob")})
	assert.ErrorIs(t, err, ErrDuplicateNumber)

	// numbering is per organisation
	_, _, err = e.ledger.CreateDocument(ctx, CreateDocumentInput{OrgID: "org-b", Number: "100", Revision: revInput("bob")})
	assert.NoError(t, err)
}

func TestLedgerService_AddRevision(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	doc, first := e.create(t, "org-a", "100")

	e.clock.Advance(time.Minute)
	in := revInput("bob")
	in.Label = "B"
	rev, err := e.ledger.AddRevision(ctx, doc.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 2, rev.Sequence)
	assert.Equal(t, "B", rev.Label)

	cur, err := e.ledger.GetCurrent(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, rev.ID, cur.ID)

	// default policy leaves the replaced revision untouched
	old, err := e.ledger.GetRevision(ctx, doc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.Status, old.Status)

	events := e.timeline(t, doc.ID)
	assert.Equal(t, 2, countKind(events, model.EventUpload))
	assert.Zero(t, countKind(events, model.EventRevisionSuperseded))
	assert.Contains(t, events[1].Description, "(B)")

	_, err = e.ledger.AddRevision(ctx, "missing", revInput("bob"))
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	_, err = e.ledger.GetRevision(ctx, doc.ID, 3)
	assert.ErrorIs(t, err, ErrRevisionNotFound)
	_, err = e.ledger.GetRevision(ctx, doc.ID, 0)
	assert.ErrorIs(t, err, ErrRevisionNotFound)
}

func TestLedgerService_SupersedePreviousPolicy(t *testing.T) {
	pc := config.DefaultPolicy()
	pc.SupersedePrevious = true
	e := newTestEnv(t, WithPolicy(PolicyFromConfig(pc)))
	ctx := context.Background()

	doc, first := e.create(t, "org-a", "100")
	second, err := e.ledger.AddRevision(ctx, doc.ID, revInput("bob"))
	require.NoError(t, err)

	old, err := e.ledger.GetRevisionByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, model.Status("superseded"), old.Status)

	cur, err := e.ledger.GetCurrent(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, cur.ID)
	assert.Equal(t, model.Status("draft"), cur.Status)

	events := e.timeline(t, doc.ID)
	require.Equal(t, 1, countKind(events, model.EventRevisionSuperseded))
	for _, ev := range events {
		if ev.Kind == model.EventRevisionSuperseded {
			assert.Equal(t, first.ID, ev.RevisionID)
		}
	}
}

func TestLedgerService_ConcurrentAddRevisionIsGapless(t *testing.T) {
	e := newTestEnv(t, WithRetry(50, time.Millisecond))
	ctx := context.Background()
	doc, _ := e.create(t, "org-a", "100")

	const n = 25
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := e.ledger.AddRevision(ctx, doc.ID, revInput(fmt.Sprintf("user-%d", i)))
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	res, err := e.ledger.ListRevisions(ctx, doc.ID, 0, 0)
	require.NoError(t, err)
	require.Len(t, res.Items, n+1)
	seqs := make([]int, 0, len(res.Items))
	for _, r := range res.Items {
		seqs = append(seqs, r.Sequence)
	}
	assert.True(t, sort.IntsAreSorted(seqs))
	for i, s := range seqs {
		assert.Equal(t, i+1, s)
	}

	got, err := e.ledger.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, n+1, got.CurrentSequence)
	assert.Equal(t, res.Items[n].ID, got.CurrentRevisionID)
}

func TestLedgerService_ConcurrentCreateDocument(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, errs[i] = e.ledger.CreateDocument(ctx, CreateDocumentInput{OrgID: "org-a", Number: "DOC-1", Revision: revInput("alice")})
		}(i)
	}
	wg.Wait()

	ok, dup := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrDuplicateNumber):
			dup++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, dup)
}

func TestLedgerService_ConcurrentResolveOrCreateConverges(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	results := make([]*ResolveResult, 2)
	errs := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = e.ledger.ResolveOrCreate(ctx, ResolveInput{OrgID: "org-a", Number: "DOC-1", Revision: revInput("alice")})
		}(i)
	}
	wg.Wait()
	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	assert.Equal(t, results[0].Document.ID, results[1].Document.ID)
	assert.True(t, results[0].Created != results[1].Created, "exactly one call creates the document")

	revs, err := e.ledger.ListRevisions(ctx, results[0].Document.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, revs.Total)
}

func TestLedgerService_ResolveOrCreateIsIdempotentPerProvenance(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	src := &model.Provenance{RevisionID: "src-rev", OrgID: "org-a", DocumentID: "src-doc", UploadedAt: e.clock.Now()}
	in := ResolveInput{OrgID: "org-b", Number: "100", Revision: revInput("alice"), Source: src}

	first, err := e.ledger.ResolveOrCreate(ctx, in)
	require.NoError(t, err)
	assert.True(t, first.Created)
	require.NotNil(t, first.Revision.Source)
	assert.Equal(t, "src-rev", first.Revision.Source.RevisionID)

	second, err := e.ledger.ResolveOrCreate(ctx, in)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.Revision.ID, second.Revision.ID)

	revs, err := e.ledger.ListRevisions(ctx, first.Document.ID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, revs.Total)
	assert.Equal(t, 1, countKind(e.timeline(t, first.Document.ID), model.EventUpload))

	// a different source is a new revision of the same document
	in.Source = &model.Provenance{RevisionID: "src-rev-2", OrgID: "org-a", UploadedAt: e.clock.Now()}
	third, err := e.ledger.ResolveOrCreate(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 2, third.Revision.Sequence)
}

func TestLedgerService_ListRevisionsPaging(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()
	doc, _ := e.create(t, "org-a", "100")
	for i := 0; i < 4; i++ {
		_, err := e.ledger.AddRevision(ctx, doc.ID, revInput("bob"))
		require.NoError(t, err)
	}

	res, err := e.ledger.ListRevisions(ctx, doc.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total)
	require.Len(t, res.Items, 2)
	assert.Equal(t, 3, res.Items[0].Sequence)
	assert.Equal(t, 4, res.Items[1].Sequence)

	_, err = e.ledger.ListRevisions(ctx, "missing", 0, 0)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestLedgerService_RetriesConflicts(t *testing.T) {
	mem := memory.New()
	conflicts := 2
	fs := &faultStore{Store: mem}
	fs.beforeTx = func() error {
		if conflicts > 0 {
			conflicts--
			return repository.ErrConflict
		}
		return nil
	}
	e := newTestEnvOn(t, fs, mem)

	_, _, err := e.ledger.CreateDocument(context.Background(), CreateDocumentInput{OrgID: "org-a", Number: "100", Revision: revInput("alice")})
	require.NoError(t, err)
	assert.Zero(t, conflicts)
}

func TestLedgerService_PersistentConflictIsUnavailable(t *testing.T) {
	mem := memory.New()
	fs := &faultStore{Store: mem, beforeTx: func() error { return repository.ErrConflict }}
	e := newTestEnvOn(t, fs, mem, WithRetry(2, time.Millisecond))

	_, _, err := e.ledger.CreateDocument(context.Background(), CreateDocumentInput{OrgID: "org-a", Number: "100", Revision: revInput("alice")})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

// blockingStore never answers a transaction before the context ends.
type blockingStore struct {
	repository.Store
}

func (b blockingStore) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	<-ctx.Done()
	return fmt.Errorf("%w: %v", repository.ErrUnavailable, ctx.Err())
}

func TestLedgerService_StorageTimeout(t *testing.T) {
	mem := memory.New()
	e := newTestEnvOn(t, blockingStore{Store: mem}, mem, WithStorageTimeout(20*time.Millisecond))

	start := time.Now()
	_, _, err := e.ledger.CreateDocument(context.Background(), CreateDocumentInput{OrgID: "org-a", Number: "100", Revision: revInput("alice")})
	assert.ErrorIs(t, err, ErrStorageUnavailable)
	assert.Less(t, time.Since(start), 5*time.Second)
}
