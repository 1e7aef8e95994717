package model

import "time"

// TransmittalState tracks saga progress. Only complete transmittals are
// visible to readers.
type TransmittalState string

const (
	TransmittalPending  TransmittalState = "pending"
	TransmittalComplete TransmittalState = "complete"
)

// Direction selects sent or received transmittals of an organisation.
type Direction string

const (
	DirectionSent     Direction = "sent"
	DirectionReceived Direction = "received"
)

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	return d == DirectionSent || d == DirectionReceived
}

// TransmittalItem is one revision snapshot carried by a transmittal.
type TransmittalItem struct {
	Position         int    `json:"position"`
	RevisionID       string `json:"revision_id"`
	SourceDocumentID string `json:"source_document_id"`
	DocumentNumber   string `json:"document_number"`
	ProjectID        string `json:"project_id"`
	// TargetDocumentID and TargetRevisionID are filled in once the item
	// has been delivered into the recipient register.
	TargetDocumentID string `json:"target_document_id,omitempty"`
	TargetRevisionID string `json:"target_revision_id,omitempty"`
}

// Transmittal records the sending of a snapshot set of revisions from one
// organisation to another. It is never deleted.
type Transmittal struct {
	ID           string            `json:"id"`
	Key          string            `json:"key"`
	Number       string            `json:"number"`
	Description  string            `json:"description,omitempty"`
	SenderOrg    string            `json:"sender_org"`
	RecipientOrg string            `json:"recipient_org"`
	CreatedBy    string            `json:"created_by"`
	CreatedAt    time.Time         `json:"created_at"`
	State        TransmittalState  `json:"state"`
	CompletedAt  *time.Time        `json:"completed_at,omitempty"`
	Items        []TransmittalItem `json:"items"`
}
