package handler

import (
	"context"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"docregister/internal/http/middleware"
	"docregister/internal/model"
	"docregister/internal/service"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

// Pinger reports whether the ledger store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the collaborators the HTTP adapter calls into.
type Deps struct {
	Store        Pinger
	Ledger       service.LedgerService
	Events       service.EventService
	Register     service.RegisterService
	Transmittals service.TransmittalService
	Files        service.FileService
	Log          *zap.Logger
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. auth runs
// in front of every register endpoint and must store a middleware.Identity.
func RegisterRoutes(app *fiber.App, d Deps, auth fiber.Handler) {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("component", "handler"))

	app.Get("/health", HealthCheck(d.Store))
	app.Get("/healthz", LivenessProbe())

	app.Get("/documents", auth, ListDocuments(d.Register, log))
	app.Post("/documents", auth, UploadDocument(d.Files, log))
	app.Get("/documents/:id", auth, GetDocument(d.Register, log))
	app.Get("/documents/:id/revisions", auth, ListRevisions(d.Ledger, log))
	app.Get("/documents/:id/revisions/:seq", auth, GetRevision(d.Ledger, log))
	app.Get("/documents/:id/events", auth, ListEvents(d.Ledger, d.Events, log))
	app.Get("/revisions/:id/download", auth, DownloadRevision(d.Files, log))

	app.Post("/transmittals", auth, SendTransmittal(d.Transmittals, log))
	app.Get("/transmittals", auth, ListTransmittals(d.Transmittals, log))
	app.Get("/transmittals/:id", auth, GetTransmittal(d.Transmittals, log))
}

// HealthCheck checks ledger store connectivity only.
//
// @Summary Readiness probe
// @Tags health
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(store Pinger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200.
//
// @Summary Liveness probe
// @Tags health
// @Success 200
// @Router /healthz [get]
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// ListDocuments lists the caller's register with each document's current revision.
//
// @Summary List the organisation register
// @Tags documents
// @Security BearerAuth
// @Param project query string false "project filter"
// @Param limit query int false "page size (1-100)"
// @Param offset query int false "page offset"
// @Success 200 {object} service.ListResult[service.DocumentEntry]
// @Router /documents [get]
func ListDocuments(reg service.RegisterService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := caller(c)
		if err != nil {
			return err
		}
		limit, offset, ok := paging(c)
		if !ok {
			return nil
		}
		res, err := reg.DocumentsForOrg(c.UserContext(), id.OrgID, c.Query("project"), limit, offset)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// UploadDocument stores a file and registers it under its document number,
// creating the document or appending the next revision.
//
// @Summary Upload a revision (multipart/form-data, field name: file)
// @Tags documents
// @Security BearerAuth
// @Accept mpfd
// @Param file formData file true "revision file"
// @Param number formData string true "document number"
// @Param project formData string false "project id"
// @Param label formData string false "revision label"
// @Param title formData string false "title"
// @Param type formData string false "document type"
// @Param status formData string false "status declared by the register policy"
// @Success 201 {object} service.ResolveResult
// @Router /documents [post]
func UploadDocument(files service.FileService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := caller(c)
		if err != nil {
			return err
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		number := c.FormValue("number")
		if number == "" {
			return writeError(c, fiber.StatusBadRequest, "NUMBER_REQUIRED", "document number is required")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		res, err := files.Upload(c.UserContext(), service.UploadInput{
			OrgID:       id.OrgID,
			ProjectID:   c.FormValue("project"),
			Number:      number,
			Label:       c.FormValue("label"),
			Title:       c.FormValue("title"),
			Type:        c.FormValue("type"),
			Status:      model.Status(c.FormValue("status")),
			UploadedBy:  id.Subject,
			Filename:    fh.Filename,
			ContentType: ct,
			Size:        fh.Size,
			Body:        f,
		})
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(res)
	}
}

// GetDocument returns the register snapshot of one document.
//
// @Summary Document snapshot with revisions and timeline
// @Tags documents
// @Security BearerAuth
// @Param id path string true "document id"
// @Success 200 {object} service.Snapshot
// @Router /documents/{id} [get]
func GetDocument(reg service.RegisterService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := caller(c)
		if err != nil {
			return err
		}
		docID, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		snap, err := reg.Snapshot(c.UserContext(), docID)
		if err != nil {
			return serviceError(c, log, err)
		}
		if snap.Document.OrgID != id.OrgID {
			return serviceError(c, log, service.ErrDocumentNotFound)
		}
		return c.JSON(snap)
	}
}

// ListRevisions lists the revisions of a document by sequence.
//
// @Summary List revisions
// @Tags documents
// @Security BearerAuth
// @Param id path string true "document id"
// @Param limit query int false "page size (1-100)"
// @Param offset query int false "page offset"
// @Success 200 {object} service.ListResult[model.Revision]
// @Router /documents/{id}/revisions [get]
func ListRevisions(ledger service.LedgerService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok, err := ownedDocument(c, ledger, log)
		if err != nil || !ok {
			return err
		}
		limit, offset, ok := paging(c)
		if !ok {
			return nil
		}
		res, err := ledger.ListRevisions(c.UserContext(), docID, limit, offset)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// GetRevision returns one revision by sequence.
//
// @Summary Get revision by sequence
// @Tags documents
// @Security BearerAuth
// @Param id path string true "document id"
// @Param seq path int true "sequence"
// @Success 200 {object} model.Revision
// @Router /documents/{id}/revisions/{seq} [get]
func GetRevision(ledger service.LedgerService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		seq, err := strconv.Atoi(c.Params("seq"))
		if err != nil || seq < 1 {
			return writeError(c, fiber.StatusBadRequest, "INVALID_SEQUENCE", "sequence must be a positive integer")
		}
		docID, ok, err := ownedDocument(c, ledger, log)
		if err != nil || !ok {
			return err
		}
		rev, err := ledger.GetRevision(c.UserContext(), docID, seq)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(rev)
	}
}

// ListEvents returns the document timeline oldest first.
//
// @Summary Document timeline
// @Tags documents
// @Security BearerAuth
// @Param id path string true "document id"
// @Param limit query int false "page size (1-100)"
// @Param offset query int false "page offset"
// @Success 200 {object} service.ListResult[model.Event]
// @Router /documents/{id}/events [get]
func ListEvents(ledger service.LedgerService, events service.EventService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		docID, ok, err := ownedDocument(c, ledger, log)
		if err != nil || !ok {
			return err
		}
		limit, offset, ok := paging(c)
		if !ok {
			return nil
		}
		res, err := events.Timeline(c.UserContext(), docID, limit, offset)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// DownloadRevision returns a presigned link to a revision file.
//
// @Summary Presigned download link
// @Tags documents
// @Security BearerAuth
// @Param id path string true "revision id"
// @Success 200 {object} service.DownloadResult
// @Router /revisions/{id}/download [get]
func DownloadRevision(files service.FileService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := caller(c)
		if err != nil {
			return err
		}
		revID, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		res, err := files.Download(c.UserContext(), id.OrgID, revID, id.Subject)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(res)
	}
}

type sendTransmittalRequest struct {
	RecipientOrg string   `json:"recipient_org"`
	RevisionIDs  []string `json:"revision_ids"`
	Number       string   `json:"number"`
	Description  string   `json:"description"`
}

// SendTransmittal sends revisions of the caller's register to another
// organisation. Repeating an identical request resumes or returns the
// earlier transmittal.
//
// @Summary Send a transmittal
// @Tags transmittals
// @Security BearerAuth
// @Accept json
// @Param body body sendTransmittalRequest true "transmittal"
// @Success 201 {object} model.Transmittal
// @Failure 409 {object} errorPayload
// @Router /transmittals [post]
func SendTransmittal(svc service.TransmittalService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := caller(c)
		if err != nil {
			return err
		}
		var req sendTransmittalRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "request body must be JSON")
		}
		t, err := svc.Send(c.UserContext(), service.SendInput{
			SenderOrg:    id.OrgID,
			RecipientOrg: req.RecipientOrg,
			RevisionIDs:  req.RevisionIDs,
			CreatedBy:    id.Subject,
			Number:       req.Number,
			Description:  req.Description,
		})
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.Status(fiber.StatusCreated).JSON(t)
	}
}

// ListTransmittals lists complete transmittals of the caller's organisation.
//
// @Summary List transmittals
// @Tags transmittals
// @Security BearerAuth
// @Param direction query string false "sent or received (default received)"
// @Param limit query int false "page size (1-100)"
// @Param offset query int false "page offset"
// @Success 200 {object} service.ListResult[model.Transmittal]
// @Router /transmittals [get]
func ListTransmittals(svc service.TransmittalService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := caller(c)
		if err != nil {
			return err
		}
		limit, offset, ok := paging(c)
		if !ok {
			return nil
		}
		dir := model.Direction(c.Query("direction", string(model.DirectionReceived)))
		res, err := svc.ListForOrg(c.UserContext(), id.OrgID, dir, limit, offset)
		if err != nil {
			return serviceError(c, log, err)
		}
		return c.JSON(res)
	}
}

// GetTransmittal returns a transmittal the caller sent or received.
//
// @Summary Get transmittal
// @Tags transmittals
// @Security BearerAuth
// @Param id path string true "transmittal id"
// @Success 200 {object} model.Transmittal
// @Router /transmittals/{id} [get]
func GetTransmittal(svc service.TransmittalService, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := caller(c)
		if err != nil {
			return err
		}
		tID, ok := uuidParam(c, "id")
		if !ok {
			return nil
		}
		t, err := svc.Get(c.UserContext(), tID)
		if err != nil {
			return serviceError(c, log, err)
		}
		if t.SenderOrg != id.OrgID && t.RecipientOrg != id.OrgID {
			return serviceError(c, log, service.ErrTransmittalNotFound)
		}
		return c.JSON(t)
	}
}

func caller(c *fiber.Ctx) (middleware.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return middleware.Identity{}, fiber.ErrUnauthorized
	}
	return id, nil
}

// uuidParam writes INVALID_ID and reports false when the param is not a uuid.
func uuidParam(c *fiber.Ctx, name string) (string, bool) {
	v := c.Params(name)
	if _, err := uuid.Parse(v); err != nil {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		return "", false
	}
	return v, true
}

// paging reads limit and offset, writing the error response itself when
// either is malformed.
func paging(c *fiber.Ctx) (limit, offset int, ok bool) {
	limit, err := strconv.Atoi(c.Query("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 || limit > maxLimit {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "limit must be between 1 and 100")
		return 0, 0, false
	}
	offset, err = strconv.Atoi(c.Query("offset", "0"))
	if err != nil || offset < 0 {
		_ = writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		return 0, 0, false
	}
	return limit, offset, true
}

// ownedDocument resolves the :id document and checks it belongs to the
// caller. When ok is false the response has been written or err is set.
func ownedDocument(c *fiber.Ctx, ledger service.LedgerService, log *zap.Logger) (string, bool, error) {
	id, err := caller(c)
	if err != nil {
		return "", false, err
	}
	docID, ok := uuidParam(c, "id")
	if !ok {
		return "", false, nil
	}
	doc, err := ledger.GetDocument(c.UserContext(), docID)
	if err != nil {
		return "", false, serviceError(c, log, err)
	}
	if doc.OrgID != id.OrgID {
		return "", false, serviceError(c, log, service.ErrDocumentNotFound)
	}
	return docID, true, nil
}
