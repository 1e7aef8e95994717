package memory

import (
	"context"

	"docregister/internal/model"
	"docregister/internal/repository"
)

type documents struct{ v view }

func (r documents) Create(ctx context.Context, doc *model.Document) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.docByKey[doc.Key()]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.docs[doc.ID]; ok {
			return repository.ErrDuplicate
		}
		st.docs[doc.ID] = *doc
		st.docByKey[doc.Key()] = doc.ID
		return nil
	})
}

func (r documents) FindByID(ctx context.Context, id string) (*model.Document, error) {
	var out model.Document
	err := r.v.read(func(st *state) error {
		d, ok := st.docs[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = d
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r documents) FindByNumber(ctx context.Context, orgID, number string) (*model.Document, error) {
	var id string
	err := r.v.read(func(st *state) error {
		var ok bool
		id, ok = st.docByKey[model.DocumentKey{OrgID: orgID, Number: number}]
		if !ok {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

// Transactions are serialized, so locking reads are plain reads.
func (r documents) LockByID(ctx context.Context, id string) (*model.Document, error) {
	return r.FindByID(ctx, id)
}

func (r documents) LockByNumber(ctx context.Context, orgID, number string) (*model.Document, error) {
	return r.FindByNumber(ctx, orgID, number)
}

func (r documents) AdvanceCurrent(ctx context.Context, documentID, revisionID string, seq int) error {
	return r.v.write(func(st *state) error {
		d, ok := st.docs[documentID]
		if !ok {
			return repository.ErrNotFound
		}
		if d.CurrentSequence >= seq {
			return repository.ErrConflict
		}
		d.CurrentRevisionID = revisionID
		d.CurrentSequence = seq
		st.docs[documentID] = d
		return nil
	})
}

func (r documents) ListByOrg(ctx context.Context, orgID, projectID string, pq repository.PageQuery) (*repository.PageResult[model.Document], error) {
	var out *repository.PageResult[model.Document]
	err := r.v.read(func(st *state) error {
		docs := sortedDocs(st, func(d model.Document) bool {
			return d.OrgID == orgID && (projectID == "" || d.ProjectID == projectID)
		})
		out = page(docs, pq)
		return nil
	})
	return out, err
}
