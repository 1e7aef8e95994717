package service

import (
	"context"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// AppendEventInput is the payload of EventService.Append.
type AppendEventInput struct {
	DocumentID    string
	RevisionID    string
	Kind          model.EventKind
	Actor         string
	Description   string
	TransmittalID string
}

// EventService is the append-only audit log. There is no update or delete.
type EventService interface {
	// Append records an event with a timestamp strictly after every earlier
	// event of the same document.
	Append(ctx context.Context, in AppendEventInput) (*model.Event, error)

	// Timeline returns the events of a document by ascending time, ties
	// broken by insertion order. A limit of zero returns all of them.
	Timeline(ctx context.Context, documentID string, limit, offset int) (*ListResult[model.Event], error)
}

type eventService struct {
	*core
}

// NewEventService constructs a new EventService.
func NewEventService(store repository.Store, opts ...Option) EventService {
	return &eventService{core: newCore(store, "events", opts...)}
}

func (s *eventService) Append(ctx context.Context, in AppendEventInput) (ev *model.Event, err error) {
	ctx, end := s.start(ctx, "events.append")
	defer end(&err)

	if in.DocumentID == "" || in.Actor == "" {
		return nil, invalid("document id and actor are required")
	}
	if !in.Kind.Valid() {
		return nil, invalid("unknown event kind %q", in.Kind)
	}

	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Documents().LockByID(ctx, in.DocumentID); err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		ev = &model.Event{
			DocumentID:    in.DocumentID,
			RevisionID:    in.RevisionID,
			Kind:          in.Kind,
			Actor:         in.Actor,
			Description:   in.Description,
			TransmittalID: in.TransmittalID,
		}
		return s.appendEventTx(ctx, r, ev)
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *eventService) Timeline(ctx context.Context, documentID string, limit, offset int) (*ListResult[model.Event], error) {
	if documentID == "" {
		return nil, invalid("document id is required")
	}
	var res *repository.PageResult[model.Event]
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Documents().FindByID(ctx, documentID); err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		var err error
		res, err = r.Events().ListByDocument(ctx, documentID, repository.PageQuery{Limit: limit, Offset: offset})
		return err
	})
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}
