package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// CreateDocumentInput is the payload of LedgerService.CreateDocument.
type CreateDocumentInput struct {
	OrgID     string
	ProjectID string
	Number    string
	Revision  model.RevisionInput
}

// ResolveInput is the payload of LedgerService.ResolveOrCreate. Source is
// set when the revision replays a revision of another register.
type ResolveInput struct {
	OrgID     string
	ProjectID string
	Number    string
	Revision  model.RevisionInput
	Source    *model.Provenance
}

// ResolveResult is returned by ResolveOrCreate. Created is true when the
// document did not exist before the call.
type ResolveResult struct {
	Document *model.Document `json:"document"`
	Revision *model.Revision `json:"revision"`
	Created  bool            `json:"created"`
}

// LedgerService owns documents and revisions.
type LedgerService interface {
	// CreateDocument registers a new document together with revision 1 and
	// records an upload event. Fails with ErrDuplicateNumber when the number
	// is taken in the organisation.
	CreateDocument(ctx context.Context, in CreateDocumentInput) (*model.Document, *model.Revision, error)

	// AddRevision appends the next revision and makes it current.
	AddRevision(ctx context.Context, documentID string, in model.RevisionInput) (*model.Revision, error)

	// ResolveOrCreate appends to the document registered under (org, number)
	// or creates it. With a Source it is idempotent: a second call for the
	// same source revision returns the revision created by the first.
	ResolveOrCreate(ctx context.Context, in ResolveInput) (*ResolveResult, error)

	GetDocument(ctx context.Context, id string) (*model.Document, error)
	GetCurrent(ctx context.Context, documentID string) (*model.Revision, error)
	GetRevision(ctx context.Context, documentID string, seq int) (*model.Revision, error)
	GetRevisionByID(ctx context.Context, id string) (*model.Revision, error)

	// ListRevisions returns revisions by ascending sequence. A limit of zero
	// returns all of them.
	ListRevisions(ctx context.Context, documentID string, limit, offset int) (*ListResult[model.Revision], error)
}

type ledgerService struct {
	*core
}

// NewLedgerService constructs a new LedgerService.
func NewLedgerService(store repository.Store, opts ...Option) LedgerService {
	return &ledgerService{core: newCore(store, "ledger", opts...)}
}

func (s *ledgerService) CreateDocument(ctx context.Context, in CreateDocumentInput) (doc *model.Document, rev *model.Revision, err error) {
	ctx, end := s.start(ctx, "ledger.create_document")
	defer end(&err)

	in.Number = strings.TrimSpace(in.Number)
	if in.OrgID == "" || in.Number == "" {
		return nil, nil, invalid("organisation and document number are required")
	}
	if err := validateRevisionInput(in.Revision); err != nil {
		return nil, nil, err
	}

	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		doc, rev, err = s.createDocumentTx(ctx, r, in.OrgID, in.ProjectID, in.Number, in.Revision, nil)
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrDuplicateNumber
		}
		if err != nil {
			return err
		}
		return s.appendEventTx(ctx, r, uploadEvent(doc, rev))
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info("document created",
		zap.String("document_id", doc.ID),
		zap.String("org_id", doc.OrgID),
		zap.String("number", doc.Number),
	)
	return doc, rev, nil
}

func (s *ledgerService) AddRevision(ctx context.Context, documentID string, in model.RevisionInput) (rev *model.Revision, err error) {
	ctx, end := s.start(ctx, "ledger.add_revision")
	defer end(&err)

	if documentID == "" {
		return nil, invalid("document id is required")
	}
	if err := validateRevisionInput(in); err != nil {
		return nil, err
	}

	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		doc, err := r.Documents().LockByID(ctx, documentID)
		if err != nil {
			return notFound(err, ErrDocumentNotFound)
		}
		if rev, err = s.appendRevisionTx(ctx, r, doc, in, nil); err != nil {
			return err
		}
		return s.appendEventTx(ctx, r, uploadEvent(doc, rev))
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("revision added",
		zap.String("document_id", documentID),
		zap.Int("sequence", rev.Sequence),
	)
	return rev, nil
}

func (s *ledgerService) ResolveOrCreate(ctx context.Context, in ResolveInput) (res *ResolveResult, err error) {
	ctx, end := s.start(ctx, "ledger.resolve_or_create")
	defer end(&err)

	in.Number = strings.TrimSpace(in.Number)
	if in.OrgID == "" || in.Number == "" {
		return nil, invalid("organisation and document number are required")
	}
	if err := validateRevisionInput(in.Revision); err != nil {
		return nil, err
	}
	if in.Source != nil && in.Source.RevisionID == "" {
		return nil, invalid("source revision id is required")
	}

	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		out, err := s.resolveOrCreateTx(ctx, r, resolveArgs{
			orgID:     in.OrgID,
			projectID: in.ProjectID,
			number:    in.Number,
			input:     in.Revision,
			source:    in.Source,
		})
		if err != nil {
			return err
		}
		res = &ResolveResult{Document: out.doc, Revision: out.rev, Created: out.created}
		if out.replayed {
			return nil
		}
		return s.appendEventTx(ctx, r, uploadEvent(out.doc, out.rev))
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *ledgerService) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, invalid("document id is required")
	}
	var doc *model.Document
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		doc, err = r.Documents().FindByID(ctx, id)
		return notFound(err, ErrDocumentNotFound)
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *ledgerService) GetCurrent(ctx context.Context, documentID string) (*model.Revision, error) {
	doc, err := s.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	var rev *model.Revision
	err = s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		rev, err = r.Revisions().FindByID(ctx, doc.CurrentRevisionID)
		return notFound(err, ErrRevisionNotFound)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *ledgerService) GetRevision(ctx context.Context, documentID string, seq int) (*model.Revision, error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	if seq < 1 {
		return nil, ErrRevisionNotFound
	}
	var rev *model.Revision
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		rev, err = r.Revisions().FindBySequence(ctx, documentID, seq)
		return notFound(err, ErrRevisionNotFound)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *ledgerService) GetRevisionByID(ctx context.Context, id string) (*model.Revision, error) {
	if id == "" {
		return nil, invalid("revision id is required")
	}
	var rev *model.Revision
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		rev, err = r.Revisions().FindByID(ctx, id)
		return notFound(err, ErrRevisionNotFound)
	})
	if err != nil {
		return nil, err
	}
	return rev, nil
}

func (s *ledgerService) ListRevisions(ctx context.Context, documentID string, limit, offset int) (*ListResult[model.Revision], error) {
	if _, err := s.GetDocument(ctx, documentID); err != nil {
		return nil, err
	}
	var res *repository.PageResult[model.Revision]
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		res, err = r.Revisions().ListByDocument(ctx, documentID, repository.PageQuery{Limit: limit, Offset: offset})
		return err
	})
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func uploadEvent(doc *model.Document, rev *model.Revision) *model.Event {
	desc := fmt.Sprintf("revision %d uploaded", rev.Sequence)
	if rev.Label != "" {
		desc = fmt.Sprintf("revision %d (%s) uploaded", rev.Sequence, rev.Label)
	}
	return &model.Event{
		DocumentID:  doc.ID,
		RevisionID:  rev.ID,
		Kind:        model.EventUpload,
		Actor:       rev.UploadedBy,
		Description: desc,
	}
}
