// Package memory is an in-process implementation of repository.Store.
// Transactions are fully serialized: WithTx holds the store lock while fn
// runs against a private copy of the state, which replaces the committed
// state only when fn succeeds.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"docregister/internal/model"
	"docregister/internal/repository"
)

type state struct {
	docs       map[string]model.Document
	docByKey   map[model.DocumentKey]string
	revs       map[string]model.Revision
	revsByDoc  map[string][]string
	events     map[string][]model.Event
	eventSeq   int64
	trans      map[string]model.Transmittal
	transByKey map[string]string
}

func newState() *state {
	return &state{
		docs:       map[string]model.Document{},
		docByKey:   map[model.DocumentKey]string{},
		revs:       map[string]model.Revision{},
		revsByDoc:  map[string][]string{},
		events:     map[string][]model.Event{},
		trans:      map[string]model.Transmittal{},
		transByKey: map[string]string{},
	}
}

func (s *state) clone() *state {
	c := newState()
	c.eventSeq = s.eventSeq
	for k, v := range s.docs {
		c.docs[k] = v
	}
	for k, v := range s.docByKey {
		c.docByKey[k] = v
	}
	for k, v := range s.revs {
		c.revs[k] = v
	}
	for k, v := range s.revsByDoc {
		c.revsByDoc[k] = append([]string(nil), v...)
	}
	for k, v := range s.events {
		c.events[k] = append([]model.Event(nil), v...)
	}
	for k, v := range s.trans {
		v.Items = append([]model.TransmittalItem(nil), v.Items...)
		c.trans[k] = v
	}
	for k, v := range s.transByKey {
		c.transByKey[k] = v
	}
	return c
}

// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{st: newState()}
}

// view resolves the state a repository call operates on: the private copy
// of a running transaction, or the committed state under the store lock.
type view struct {
	store *Store
	tx    *state
}

func (v view) read(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.st)
}

func (v view) write(fn func(st *state) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.st)
}

type repos struct{ v view }

func (r repos) Documents() repository.DocumentRepository       { return documents(r) }
func (r repos) Revisions() repository.RevisionRepository       { return revisions(r) }
func (r repos) Events() repository.EventRepository             { return events(r) }
func (r repos) Transmittals() repository.TransmittalRepository { return transmittals(r) }

func (s *Store) Documents() repository.DocumentRepository       { return documents{v: view{store: s}} }
func (s *Store) Revisions() repository.RevisionRepository       { return revisions{v: view{store: s}} }
func (s *Store) Events() repository.EventRepository             { return events{v: view{store: s}} }
func (s *Store) Transmittals() repository.TransmittalRepository { return transmittals{v: view{store: s}} }

// WithTx runs fn against a private copy of the state and commits it on success.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r repository.Repos) error) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(ctx, repos{v: view{store: s, tx: work}}); err != nil {
		return err
	}
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(ctx context.Context) error {
	return ctxErr(ctx)
}

func ctxErr(ctx context.Context) error {
	err := ctx.Err()
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}

func page[T any](items []T, pq repository.PageQuery) *repository.PageResult[T] {
	total := len(items)
	start := pq.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if pq.Limit > 0 && start+pq.Limit < end {
		end = start + pq.Limit
	}
	out := make([]T, end-start)
	copy(out, items[start:end])
	return &repository.PageResult[T]{Items: out, Total: total}
}

func sortedDocs(st *state, keep func(model.Document) bool) []model.Document {
	out := make([]model.Document, 0)
	for _, d := range st.docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Number != out[j].Number {
			return out[i].Number < out[j].Number
		}
		return out[i].ID < out[j].ID
	})
	return out
}
