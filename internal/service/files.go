package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"docregister/internal/model"
	"docregister/internal/repository"
	"docregister/internal/storage"
)

const defaultPresignExpiry = 15 * time.Minute

// UploadInput is the payload of FileService.Upload.
type UploadInput struct {
	OrgID       string
	ProjectID   string
	Number      string
	Label       string
	Title       string
	Type        string
	Status      model.Status
	UploadedBy  string
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// DownloadResult carries a time-limited link to a revision file.
type DownloadResult struct {
	URL       string          `json:"url"`
	ExpiresAt time.Time       `json:"expires_at"`
	Revision  *model.Revision `json:"revision"`
}

// FileService joins the blob store and the ledger.
type FileService interface {
	// Upload stores the bytes, then registers them as a new document or as
	// the next revision of the document with the same number. The blob is
	// removed again if the ledger write fails.
	Upload(ctx context.Context, in UploadInput) (*ResolveResult, error)

	// Download presigns the file of a revision in orgID's register and
	// records a download event.
	Download(ctx context.Context, orgID, revisionID, actor string) (*DownloadResult, error)
}

type fileService struct {
	*core
	blobs  storage.Storage
	expiry time.Duration
}

// NewFileService constructs a new FileService. A zero presignExpiry uses 15 minutes.
func NewFileService(store repository.Store, blobs storage.Storage, presignExpiry time.Duration, opts ...Option) FileService {
	if presignExpiry <= 0 {
		presignExpiry = defaultPresignExpiry
	}
	return &fileService{
		core:   newCore(store, "files", opts...),
		blobs:  blobs,
		expiry: presignExpiry,
	}
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (res *ResolveResult, err error) {
	ctx, end := s.start(ctx, "files.upload")
	defer end(&err)

	if in.Body == nil {
		return nil, invalid("file body is required")
	}
	in.Number = strings.TrimSpace(in.Number)
	if in.OrgID == "" || in.Number == "" || in.UploadedBy == "" {
		return nil, invalid("organisation, document number and uploader are required")
	}
	if _, err := s.policy.resolve(in.Status); err != nil {
		return nil, err
	}

	key, err := storage.ObjectKey(in.OrgID, in.Number, uuid.NewString(), in.Filename)
	if err != nil {
		return nil, invalid("%v", err)
	}
	info, err := s.blobs.Put(ctx, key, in.Body, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: in.ContentType,
		Metadata:    map[string]string{"original-filename": in.Filename},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	rev := model.RevisionInput{
		Label:       in.Label,
		Title:       in.Title,
		Type:        in.Type,
		Status:      in.Status,
		FileRef:     info.Key,
		ContentType: in.ContentType,
		Size:        info.Size,
		UploadedBy:  in.UploadedBy,
	}
	if rev.Title == "" {
		rev.Title = in.Filename
	}

	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		out, err := s.resolveOrCreateTx(ctx, r, resolveArgs{
			orgID:     in.OrgID,
			projectID: in.ProjectID,
			number:    in.Number,
			input:     rev,
		})
		if err != nil {
			return err
		}
		res = &ResolveResult{Document: out.doc, Revision: out.rev, Created: out.created}
		return s.appendEventTx(ctx, r, uploadEvent(out.doc, out.rev))
	})
	if err != nil {
		if delErr := s.blobs.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.Error("blob rollback failed", zap.String("key", key), zap.Error(delErr))
			return nil, multierr.Append(fmt.Errorf("save revision: %w", err), fmt.Errorf("rollback blob: %w", delErr))
		}
		return nil, fmt.Errorf("save revision: %w", err)
	}

	s.log.Info("file uploaded",
		zap.String("document_id", res.Document.ID),
		zap.Int("sequence", res.Revision.Sequence),
		zap.Bool("created", res.Created),
	)
	return res, nil
}

func (s *fileService) Download(ctx context.Context, orgID, revisionID, actor string) (out *DownloadResult, err error) {
	ctx, end := s.start(ctx, "files.download")
	defer end(&err)

	if orgID == "" || revisionID == "" || actor == "" {
		return nil, invalid("organisation, revision id and actor are required")
	}

	var rev *model.Revision
	err = s.read(ctx, func(ctx context.Context, r repository.Repos) error {
		var err error
		if rev, err = r.Revisions().FindByID(ctx, revisionID); err != nil {
			return notFound(err, ErrRevisionNotFound)
		}
		doc, err := r.Documents().FindByID(ctx, rev.DocumentID)
		if err != nil {
			return err
		}
		if doc.OrgID != orgID {
			return ErrRevisionNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	url, err := s.blobs.PresignGet(ctx, rev.FileRef, s.expiry)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrRevisionNotFound
		}
		return nil, fmt.Errorf("presign: %w", err)
	}

	err = s.tx(ctx, func(ctx context.Context, r repository.Repos) error {
		if _, err := r.Documents().LockByID(ctx, rev.DocumentID); err != nil {
			return err
		}
		return s.appendEventTx(ctx, r, &model.Event{
			DocumentID:  rev.DocumentID,
			RevisionID:  rev.ID,
			Kind:        model.EventDownload,
			Actor:       actor,
			Description: fmt.Sprintf("revision %d downloaded", rev.Sequence),
		})
	})
	if err != nil {
		return nil, err
	}

	return &DownloadResult{URL: url, ExpiresAt: s.now().Add(s.expiry), Revision: rev}, nil
}
