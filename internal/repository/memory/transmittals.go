package memory

import (
	"context"
	"sort"
	"time"

	"docregister/internal/model"
	"docregister/internal/repository"
)

type transmittals struct{ v view }

func (r transmittals) Create(ctx context.Context, t *model.Transmittal) error {
	return r.v.write(func(st *state) error {
		if _, ok := st.transByKey[t.Key]; ok {
			return repository.ErrDuplicate
		}
		if _, ok := st.trans[t.ID]; ok {
			return repository.ErrDuplicate
		}
		cp := *t
		cp.Items = append([]model.TransmittalItem(nil), t.Items...)
		st.trans[t.ID] = cp
		st.transByKey[t.Key] = t.ID
		return nil
	})
}

func (r transmittals) get(id string) (*model.Transmittal, error) {
	var out model.Transmittal
	err := r.v.read(func(st *state) error {
		t, ok := st.trans[id]
		if !ok {
			return repository.ErrNotFound
		}
		out = t
		out.Items = append([]model.TransmittalItem(nil), t.Items...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r transmittals) FindByID(ctx context.Context, id string) (*model.Transmittal, error) {
	return r.get(id)
}

func (r transmittals) FindByKey(ctx context.Context, key string) (*model.Transmittal, error) {
	var id string
	err := r.v.read(func(st *state) error {
		var ok bool
		if id, ok = st.transByKey[key]; !ok {
			return repository.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r.get(id)
}

func (r transmittals) SetItemTarget(ctx context.Context, transmittalID string, position int, documentID, revisionID string) error {
	return r.v.write(func(st *state) error {
		t, ok := st.trans[transmittalID]
		if !ok {
			return repository.ErrNotFound
		}
		items := append([]model.TransmittalItem(nil), t.Items...)
		for i := range items {
			if items[i].Position == position {
				items[i].TargetDocumentID = documentID
				items[i].TargetRevisionID = revisionID
				t.Items = items
				st.trans[transmittalID] = t
				return nil
			}
		}
		return repository.ErrNotFound
	})
}

func (r transmittals) MarkComplete(ctx context.Context, id string, at time.Time) error {
	return r.v.write(func(st *state) error {
		t, ok := st.trans[id]
		if !ok {
			return repository.ErrNotFound
		}
		if t.State == model.TransmittalComplete {
			return nil
		}
		t.State = model.TransmittalComplete
		t.CompletedAt = &at
		st.trans[id] = t
		return nil
	})
}

func (r transmittals) ListByOrg(ctx context.Context, orgID string, dir model.Direction, pq repository.PageQuery) (*repository.PageResult[model.Transmittal], error) {
	var out *repository.PageResult[model.Transmittal]
	err := r.v.read(func(st *state) error {
		items := make([]model.Transmittal, 0)
		for _, t := range st.trans {
			if t.State != model.TransmittalComplete {
				continue
			}
			if (dir == model.DirectionSent && t.SenderOrg == orgID) ||
				(dir == model.DirectionReceived && t.RecipientOrg == orgID) {
				t.Items = append([]model.TransmittalItem(nil), t.Items...)
				items = append(items, t)
			}
		}
		sort.Slice(items, func(i, j int) bool {
			if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
				return items[i].CreatedAt.After(items[j].CreatedAt)
			}
			return items[i].ID > items[j].ID
		})
		out = page(items, pq)
		return nil
	})
	return out, err
}
