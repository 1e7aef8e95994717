package service

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"docregister/internal/model"
	"docregister/internal/repository"
)

// SendInput is the payload of TransmittalService.Send.
type SendInput struct {
	SenderOrg    string
	RecipientOrg string
	// RevisionIDs are delivered in this order. Repeated ids collapse onto
	// their first occurrence.
	RevisionIDs []string
	CreatedBy   string
	// Number defaults to TR- followed by the start of the idempotency key.
	Number      string
	Description string
}

// TransmittalService sends revision snapshots between registers.
type TransmittalService interface {
	// Send delivers every revision into the recipient register, creating
	// documents by number where needed. The same sender, recipient and
	// revision list always map to one transmittal, so a failed send is
	// resumed by repeating it. Errors: ErrEmptyTransmittal,
	// ErrForeignRevision, ErrRevisionNotFound, *PartialTransmittalFailure.
	Send(ctx context.Context, in SendInput) (*model.Transmittal, error)

	// Get returns a complete transmittal.
	Get(ctx context.Context, id string) (*model.Transmittal, error)

	// ListForOrg returns complete transmittals sent or received by orgID,
	// newest first. A limit of zero returns all of them.
	ListForOrg(ctx context.Context, orgID string, dir model.Direction, limit, offset int) (*ListResult[model.Transmittal], error)
}

type transmittalService struct {
	*core
}

// NewTransmittalService constructs a new TransmittalService.
func NewTransmittalService(store repository.Store, opts ...Option) TransmittalService {
	return &transmittalService{core: newCore(store, "transmittal", opts...)}
}

// transmittalKey derives the natural key of a send.
func transmittalKey(sender, recipient string, revisionIDs []string) string {
	var b strings.Builder
	b.WriteString(sender)
	b.WriteByte(0)
	b.WriteString(recipient)
	for _, id := range revisionIDs {
		b.WriteByte(0)
		b.WriteString(id)
	}
	sum := blake3.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *transmittalService) Send(ctx context.Context, in SendInput) (t *model.Transmittal, err error) {
	ctx, end := s.start(ctx, "transmittal.send")
	defer end(&err)

	if len(in.RevisionIDs) == 0 {
		return nil, ErrEmptyTransmittal
	}
	if in.SenderOrg == "" || in.RecipientOrg == "" || in.CreatedBy == "" {
		return nil, invalid("sender, recipient and creator are required")
	}
	if in.SenderOrg == in.RecipientOrg {
		return nil, invalid("sender and recipient must differ")
	}
	ids := dedupe(in.RevisionIDs)

	items, err := s.snapshot(ctx, in.SenderOrg, ids)
	if err != nil {
		return nil, err
	}

	key := transmittalKey(in.SenderOrg, in.RecipientOrg, ids)
	log := s.log.With(zap.String("key", key), zap.String("sender", in.SenderOrg), zap.String("recipient", in.RecipientOrg))

	t, err = s.open(ctx, key, in, items)
	if err != nil {
		return nil, err
	}
	if t.State == model.TransmittalComplete {
		log.Debug("transmittal already complete", zap.String("transmittal_id", t.ID))
		return t, nil
	}
	log = log.With(zap.String("transmittal_id", t.ID))

	succeeded := make([]model.DocumentKey, 0, len(t.Items))
	for _, it := range t.Items {
		target := model.DocumentKey{OrgID: t.RecipientOrg, Number: it.DocumentNumber}
		if it.TargetRevisionID != "" {
			succeeded = append(succeeded, target)
			s.metrics.item("skipped")
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, s.partial(log, t, succeeded, target, err)
		}
		if err := s.deliver(ctx, t, it); err != nil {
			s.metrics.item("failed")
			return nil, s.partial(log, t, succeeded, target, err)
		}
		s.metrics.item("delivered")
		log.Debug("transmittal item delivered", zap.Int("position", it.Position), zap.String("number", it.DocumentNumber))
		succeeded = append(succeeded, target)
	}

	if err := ctx.Err(); err != nil {
		return nil, s.partial(log, t, succeeded, model.DocumentKey{}, err)
	}
	var done *model.Transmittal
	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		if err := r.Transmittals().MarkComplete(ctx, t.ID, s.now()); err != nil {
			return err
		}
		var err error
		done, err = r.Transmittals().FindByID(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, s.partial(log, t, succeeded, model.DocumentKey{}, err)
	}

	log.Info("transmittal complete", zap.Int("items", len(done.Items)))
	return done, nil
}

// snapshot resolves the revisions to send and checks they belong to sender.
func (s *transmittalService) snapshot(ctx context.Context, sender string, ids []string) ([]model.TransmittalItem, error) {
	items := make([]model.TransmittalItem, 0, len(ids))
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		for i, id := range ids {
			rev, err := r.Revisions().FindByID(ctx, id)
			if err != nil {
				return notFound(err, fmt.Errorf("%w: %s", ErrRevisionNotFound, id))
			}
			doc, err := r.Documents().FindByID(ctx, rev.DocumentID)
			if err != nil {
				return err
			}
			if doc.OrgID != sender {
				return fmt.Errorf("%w: %s", ErrForeignRevision, id)
			}
			items = append(items, model.TransmittalItem{
				Position:         i,
				RevisionID:       rev.ID,
				SourceDocumentID: doc.ID,
				DocumentNumber:   doc.Number,
				ProjectID:        doc.ProjectID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// open returns the transmittal for key, creating it as pending when absent.
func (s *transmittalService) open(ctx context.Context, key string, in SendInput, items []model.TransmittalItem) (*model.Transmittal, error) {
	var t *model.Transmittal
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		t, err = r.Transmittals().FindByKey(ctx, key)
		return err
	})
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	number := in.Number
	if number == "" {
		number = "TR-" + strings.ToUpper(key[:8])
	}
	t = &model.Transmittal{
		ID:           uuid.NewString(),
		Key:          key,
		Number:       number,
		Description:  in.Description,
		SenderOrg:    in.SenderOrg,
		RecipientOrg: in.RecipientOrg,
		CreatedBy:    in.CreatedBy,
		CreatedAt:    s.now(),
		State:        model.TransmittalPending,
		Items:        items,
	}
	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		return r.Transmittals().Create(ctx, t)
	})
	if errors.Is(err, repository.ErrDuplicate) {
		// a concurrent identical send created it; continue with theirs
		err = s.read(ctx, func(ctx context.Context, r repository.Repos) error {
			var err error
			t, err = r.Transmittals().FindByKey(ctx, key)
			return err
		})
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// deliver runs one saga step: upsert into the recipient register, record the
// target on the item, then the received and sent events. Every part is keyed
// so a repeated step writes nothing new.
func (s *transmittalService) deliver(ctx context.Context, t *model.Transmittal, it model.TransmittalItem) error {
	return s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		src, err := r.Revisions().FindByID(ctx, it.RevisionID)
		if err != nil {
			return err
		}
		if _, err := r.Documents().LockByID(ctx, it.SourceDocumentID); err != nil {
			return err
		}

		in := model.InputFrom(*src, t.CreatedBy)
		if !s.policy.Allows(in.Status) {
			in.Status = ""
		}
		out, err := s.resolveOrCreateTx(ctx, r, resolveArgs{
			orgID:     t.RecipientOrg,
			projectID: it.ProjectID,
			number:    it.DocumentNumber,
			input:     in,
			source: &model.Provenance{
				RevisionID: src.ID,
				OrgID:      t.SenderOrg,
				DocumentID: it.SourceDocumentID,
				// forwarded revisions keep the first upload time
				UploadedAt: src.OriginatedAt(),
			},
		})
		if err != nil {
			return err
		}

		if err := r.Transmittals().SetItemTarget(ctx, t.ID, it.Position, out.doc.ID, out.rev.ID); err != nil {
			return err
		}
		if err := s.appendOnceTx(ctx, r, &model.Event{
			DocumentID:    out.doc.ID,
			RevisionID:    out.rev.ID,
			Kind:          model.EventTransmittalReceived,
			Actor:         t.CreatedBy,
			Description:   fmt.Sprintf("received in %s from %s", t.Number, t.SenderOrg),
			TransmittalID: t.ID,
		}); err != nil {
			return err
		}
		return s.appendOnceTx(ctx, r, &model.Event{
			DocumentID:    it.SourceDocumentID,
			RevisionID:    src.ID,
			Kind:          model.EventTransmittalSent,
			Actor:         t.CreatedBy,
			Description:   fmt.Sprintf("sent in %s to %s", t.Number, t.RecipientOrg),
			TransmittalID: t.ID,
		})
	})
}

func (s *transmittalService) partial(log *zap.Logger, t *model.Transmittal, succeeded []model.DocumentKey, failed model.DocumentKey, err error) error {
	log.Error("transmittal stopped",
		zap.Int("succeeded", len(succeeded)),
		zap.Stringer("failed", failed),
		zap.Error(err),
	)
	return &PartialTransmittalFailure{
		TransmittalID: t.ID,
		Succeeded:     succeeded,
		Failed:        failed,
		Err:           err,
	}
}

func (s *transmittalService) Get(ctx context.Context, id string) (*model.Transmittal, error) {
	if id == "" {
		return nil, invalid("transmittal id is required")
	}
	var t *model.Transmittal
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		t, err = r.Transmittals().FindByID(ctx, id)
		return notFound(err, ErrTransmittalNotFound)
	})
	if err != nil {
		return nil, err
	}
	if t.State != model.TransmittalComplete {
		return nil, ErrTransmittalNotFound
	}
	return t, nil
}

func (s *transmittalService) ListForOrg(ctx context.Context, orgID string, dir model.Direction, limit, offset int) (*ListResult[model.Transmittal], error) {
	if orgID == "" {
		return nil, invalid("organisation is required")
	}
	if !dir.Valid() {
		return nil, invalid("direction must be sent or received")
	}
	var res *repository.PageResult[model.Transmittal]
	err := s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		res, err = r.Transmittals().ListByOrg(ctx, orgID, dir, repository.PageQuery{Limit: limit, Offset: offset})
		return err
	})
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}
