package model

import "time"

// Document is a numbered entry in one organisation's register.
// (OrgID, Number) is unique. CurrentRevisionID always names the revision
// with the highest sequence; CurrentSequence mirrors that sequence so the
// pointer can only be moved forward.
type Document struct {
	ID                string    `json:"id"`
	OrgID             string    `json:"org_id"`
	ProjectID         string    `json:"project_id"`
	Number            string    `json:"number"`
	CurrentRevisionID string    `json:"current_revision_id"`
	CurrentSequence   int       `json:"current_sequence"`
	CreatedAt         time.Time `json:"created_at"`
}

// DocumentKey identifies a document by its natural key.
type DocumentKey struct {
	OrgID  string `json:"org_id"`
	Number string `json:"number"`
}

func (k DocumentKey) String() string {
	return k.OrgID + "/" + k.Number
}

// Key returns the natural key of the document.
func (d Document) Key() DocumentKey {
	return DocumentKey{OrgID: d.OrgID, Number: d.Number}
}
