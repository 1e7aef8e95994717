package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"docregister/internal/model"
	"docregister/internal/repository"
)

var (
	ErrDuplicateNumber     = errors.New("document number already registered")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrRevisionNotFound    = errors.New("revision not found")
	ErrTransmittalNotFound = errors.New("transmittal not found")
	ErrForeignRevision     = errors.New("revision does not belong to the sender")
	ErrEmptyTransmittal    = errors.New("transmittal has no revisions")
	ErrStorageUnavailable  = errors.New("storage unavailable")
	ErrInvalidStatus       = errors.New("status is not declared by the register policy")
	ErrInvalidInput        = errors.New("invalid input")
)

// PartialTransmittalFailure reports a send that stopped after some items
// were delivered. Re-issuing the identical send resumes it.
type PartialTransmittalFailure struct {
	TransmittalID string
	// Succeeded lists the recipient documents already delivered, in item order.
	Succeeded []model.DocumentKey
	// Failed is the recipient document whose step failed. It is zero when
	// every item was delivered but the transmittal could not be completed.
	Failed model.DocumentKey
	Err    error
}

func (e *PartialTransmittalFailure) Error() string {
	keys := make([]string, 0, len(e.Succeeded))
	for _, k := range e.Succeeded {
		keys = append(keys, k.String())
	}
	return fmt.Sprintf("transmittal %s partially delivered (succeeded: [%s], failed: %s): %v",
		e.TransmittalID, strings.Join(keys, ", "), e.Failed, e.Err)
}

func (e *PartialTransmittalFailure) Unwrap() error { return e.Err }

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// storageErr turns transient store failures into ErrStorageUnavailable and
// leaves everything else untouched.
func storageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrStorageUnavailable):
		return err
	case errors.Is(err, repository.ErrUnavailable),
		errors.Is(err, repository.ErrConflict),
		errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return err
}

// notFound replaces repository.ErrNotFound with the domain sentinel.
func notFound(err, sentinel error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}
