package model

import "time"

// EventKind classifies an audit event.
type EventKind string

const (
	EventUpload              EventKind = "upload"
	EventDownload            EventKind = "download"
	EventTransmittalSent     EventKind = "transmittal_sent"
	EventTransmittalReceived EventKind = "transmittal_received"
	EventRevisionSuperseded  EventKind = "revision_superseded"
)

// Valid reports whether k is a known event kind.
func (k EventKind) Valid() bool {
	switch k {
	case EventUpload, EventDownload, EventTransmittalSent, EventTransmittalReceived, EventRevisionSuperseded:
		return true
	}
	return false
}

// Event is an append-only audit entry on a document timeline. Seq is
// assigned by the store and breaks ties between equal timestamps.
type Event struct {
	ID            string    `json:"id"`
	Seq           int64     `json:"seq"`
	DocumentID    string    `json:"document_id"`
	RevisionID    string    `json:"revision_id,omitempty"`
	Kind          EventKind `json:"kind"`
	Actor         string    `json:"actor"`
	Description   string    `json:"description"`
	TransmittalID string    `json:"transmittal_id,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}
