package usecase

import "errors"

var (
	// ErrInvalidState means the attempted transition is not legal from the
	// job's current state. Racing callers lose with this error too: the
	// conditional write sees a state that already moved on.
	ErrInvalidState = errors.New("invalid job state")

	// ErrNotAssignedToWorker means the caller is not the worker the job is
	// assigned to.
	ErrNotAssignedToWorker = errors.New("job not assigned to worker")

	// ErrNotOwner means the caller does not own the resource being acted on.
	ErrNotOwner = errors.New("not the owner")

	ErrNotFound        = errors.New("not found")
	ErrAlreadyReviewed = errors.New("job already reviewed")
	ErrValidation      = errors.New("invalid input")
	ErrInternal        = errors.New("internal error")
)
