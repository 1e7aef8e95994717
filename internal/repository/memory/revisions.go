package memory

import (
	"context"

	"docregister/internal/model"
	"docregister/internal/repository"
)

type revisions struct{ v view }

func (r revisions) Create(ctx context.Context, rev *model.Revision) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.revs[rev.ID]; ok {
			return repository.ErrDuplicate
		}
		for _, id := range st.revsByDoc[rev.DocumentID] {
			existing := st.revs[id]
			if existing.Sequence == rev.Sequence {
				return repository.ErrDuplicate
			}
			if rev.Source != nil && existing.Source != nil && existing.Source.RevisionID == rev.Source.RevisionID {
				return repository.ErrDuplicate
			}
		}
		st.revs[rev.ID] = *rev
		st.revsByDoc[rev.DocumentID] = append(st.revsByDoc[rev.DocumentID], rev.ID)
		return nil
	})
}

func (r revisions) FindByID(ctx context.Context, id string) (*model.Revision, error) {
	var out model.Revision
	err := r.v.read(func(st *state) error {
		rev, ok := st.revs[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = rev
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r revisions) find(documentID string, match func(model.Revision) bool) (*model.Revision, error) {
	var out model.Revision
	err := r.v.read(func(st *state) error {
		for _, id := range st.revsByDoc[documentID] {
			if rev := st.revs[id]; match(rev) {
				out = rev
				return nil
			}
		}
		return repository.ErrNotFound
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r revisions) FindBySequence(ctx context.Context, documentID string, seq int) (*model.Revision, error) {
	return r.find(documentID, func(rev model.Revision) bool { return rev.Sequence == seq })
}

func (r revisions) FindBySource(ctx context.Context, documentID, sourceRevisionID string) (*model.Revision, error) {
	return r.find(documentID, func(rev model.Revision) bool {
		return rev.Source != nil && rev.Source.RevisionID == sourceRevisionID
	})
}

func (r revisions) MaxSequence(ctx context.Context, documentID string) (int, error) {
	max := 0
	err := r.v.read(func(st *state) error {
		for _, id := range st.revsByDoc[documentID] {
			if seq := st.revs[id].Sequence; seq > max {
				max = seq
			}
		}
		return nil
	})
	return max, err
}

func (r revisions) ListByDocument(ctx context.Context, documentID string, pq repository.PageQuery) (*repository.PageResult[model.Revision], error) {
	var out *repository.PageResult[model.Revision]
	err := r.v.read(func(st *state) error {
		ids := st.revsByDoc[documentID]
		items := make([]model.Revision, 0, len(ids))
		for _, id := range ids {
			items = append(items, st.revs[id])
		}
		// sequences are allocated max+1, so append order is sequence order
		out = page(items, pq)
		return nil
	})
	return out, err
}

func (r revisions) SetStatus(ctx context.Context, id string, status model.Status) error {
	return r.v.write(func(st *state) error {
		rev, ok := st.revs[id]
		if !ok {
			return repository.ErrNotFound
		}
		rev.Status = status
		st.revs[id] = rev
		return nil
	})
}
