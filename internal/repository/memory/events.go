package memory

import (
	"context"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"
)

type events struct{ v view }

func (r events) Append(ctx context.Context, ev *model.Event) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.docs[ev.DocumentID]; !ok {
			return repository.ErrNotFound
		}
		st.eventSeq++
		ev.Seq = st.eventSeq
		st.events[ev.DocumentID] = append(st.events[ev.DocumentID], *ev)
		return nil
	})
}

func (r events) LastOccurredAt(ctx context.Context, documentID string) (time.Time, error) {
	var last time.Time
	err := r.v.read(func(st *state) error {
		for _, ev := range st.events[documentID] {
			if ev.OccurredAt.After(last) {
				last = ev.OccurredAt
			}
		}
		return nil
	})
	return last, err
}

func (r events) Exists(ctx context.Context, documentID, transmittalID string, kind model.EventKind) (bool, error) {
	found := false
	err := r.v.read(func(st *state) error {
		for _, ev := range st.events[documentID] {
			if ev.TransmittalID == transmittalID && ev.Kind == kind {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

func (r events) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) (*repository.PageResult[model.Event], error) {
	var out *repository.PageResult[model.Event]
	err := r.v.read(func(st *state) error {
		items := append([]model.Event(nil), st.events[documentID]...)
		sortEvents(items)
		out = page(items, pq)
		return nil
	})
	return out, err
}

func sortEvents(items []model.Event) {
	// insertion sort keeps this stable and the slices are nearly sorted
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && eventLess(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

func eventLess(a, b model.Event) bool {
	if !a.OccurredAt.Equal(b.OccurredAt) {
		return a.OccurredAt.Before(b.OccurredAt)
	}
	return a.Seq < b.Seq
}
