package service

import (
	"context"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// DocumentEntry is one row of an organisation's register: the document and
// its current revision.
type DocumentEntry struct {
	model.Document
	Current *model.Revision `json:"current_revision"`
}

// Snapshot is the full state of one document.
type Snapshot struct {
	Document  model.Document   `json:"document"`
	Current   model.Revision   `json:"current_revision"`
	Revisions []model.Revision `json:"revisions"`
	Events    []model.Event    `json:"events"`
}

// RegisterService answers read-only queries over the ledger and event log.
type RegisterService interface {
	// DocumentsForOrg lists the register of an organisation ordered by
	// number. An empty projectID lists every project. A limit of zero
	// returns every document.
	DocumentsForOrg(ctx context.Context, orgID, projectID string, limit, offset int) (*ListResult[DocumentEntry], error)

	// Snapshot returns the current revision, the revision history and the
	// timeline of a document as of one transaction.
	Snapshot(ctx context.Context, documentID string) (*Snapshot, error)
}

type registerService struct {
	*core
}

// NewRegisterService constructs a new RegisterService.
func NewRegisterService(store repository.Store, opts ...Option) RegisterService {
	return &registerService{core: newCore(store, "register", opts...)}
}

func (s *registerService) DocumentsForOrg(ctx context.Context, orgID, projectID string, limit, offset int) (*ListResult[DocumentEntry], error) {
	if orgID == "" {
		return nil, invalid("organisation is required")
	}
	var out *ListResult[DocumentEntry]
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		res, err := r.Documents().ListByOrg(ctx, orgID, projectID, repository.PageQuery{Limit: limit, Offset: offset})
		if err != nil {
			return err
		}
		out = &ListResult[DocumentEntry]{Items: make([]DocumentEntry, 0, len(res.Items)), Total: res.Total}
		for _, d := range res.Items {
			entry := DocumentEntry{Document: d}
			if d.CurrentRevisionID != "" {
				rev, err := r.Revisions().FindByID(ctx, d.CurrentRevisionID)
				if err != nil {
					return err
				}
				entry.Current = rev
			}
			out.Items = append(out.Items, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Snapshot holds the document row lock while it reads. Every writer takes
// that lock first, so the current revision, the history and the timeline
// come from the same committed state even at read committed isolation.
func (s *registerService) Snapshot(ctx context.Context, documentID string) (snap *Snapshot, err error) {
	if documentID == "" {
		return nil, invalid("document id is required")
	}
	ctx, end := s.start(ctx, "register.snapshot")
	defer end(&err)

	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		doc, err := r.Documents().LockByID(ctx, documentID)
		if err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		cur, err := r.Revisions().FindByID(ctx, doc.CurrentRevisionID)
		if err != nil {
			return notFound(err, ErrRevisionNotFound)
		}
		revs, err := r.Revisions().ListByDocument(ctx, documentID, repository.PageQuery{})
		if err != nil {
			return err
		}
		evs, err := r.Events().ListByDocument(ctx, documentID, repository.PageQuery{})
		if err != nil {
			return err
		}
		snap = &Snapshot{
			Document:  *doc,
			Current:   *cur,
			Revisions: revs.Items,
			Events:    evs.Items,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
