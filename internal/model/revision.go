package model

import "time"

// Status is one of the revision statuses declared by the register policy.
type Status string

// Provenance links a revision back to the revision in another register
// that produced it through a transmittal.
type Provenance struct {
	RevisionID string    `json:"revision_id"`
	OrgID      string    `json:"org_id"`
	DocumentID string    `json:"document_id"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Revision is an immutable, sequence-numbered version of a document.
type Revision struct {
	ID          string      `json:"id"`
	DocumentID  string      `json:"document_id"`
	Sequence    int         `json:"sequence"`
	Label       string      `json:"label"`
	Title       string      `json:"title"`
	Type        string      `json:"type"`
	Status      Status      `json:"status"`
	FileRef     string      `json:"file_ref"`
	ContentType string      `json:"content_type,omitempty"`
	Size        int64       `json:"size"`
	UploadedBy  string      `json:"uploaded_by"`
	UploadedAt  time.Time   `json:"uploaded_at"`
	Source      *Provenance `json:"source,omitempty"`
}

// OriginatedAt is the time the artifact was first uploaded anywhere: the
// source upload time for transmitted revisions, otherwise UploadedAt.
func (r Revision) OriginatedAt() time.Time {
	if r.Source != nil {
		return r.Source.UploadedAt
	}
	return r.UploadedAt
}

// RevisionInput carries the caller-supplied attributes of a new revision.
type RevisionInput struct {
	Label       string
	Title       string
	Type        string
	Status      Status
	FileRef     string
	ContentType string
	Size        int64
	UploadedBy  string
}

// InputFrom copies the content attributes of an existing revision, used
// when a transmittal replays a source revision into another register.
func InputFrom(r Revision, uploadedBy string) RevisionInput {
	return RevisionInput{
		Label:       r.Label,
		Title:       r.Title,
		Type:        r.Type,
		Status:      r.Status,
		FileRef:     r.FileRef,
		ContentType: r.ContentType,
		Size:        r.Size,
		UploadedBy:  uploadedBy,
	}
}
