package repository

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrConflict is returned when a transaction lost a race (serialization
	// failure, deadlock, stale pointer) and may succeed when retried.
	ErrConflict = errors.New("write conflict")
	// ErrUnavailable is returned when the store cannot be reached in time.
	ErrUnavailable = errors.New("storage unavailable")
)

// Repos groups the repositories bound to one connection or transaction.
type Repos interface {
	Documents() DocumentRepository
	Revisions() RevisionRepository
	Events() EventRepository
	Transmittals() TransmittalRepository
}

// Store is the persistence collaborator of the register. Reads through the
// embedded Repos see committed state; WithTx runs fn in one transaction
// that commits when fn returns nil and rolls back otherwise.
type Store interface {
	Repos
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repos) error) error
	Ping(ctx context.Context) error
}
