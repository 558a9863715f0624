package runstate

import "errors"

// Client errors, all of which the HTTP layer maps to 400 per spec.md %7.
var (
	ErrInsufficientSlots = errors.New("insufficient_slots")
	ErrDatasetInvalid    = errors.New("dataset_invalid")
	ErrUnknownWorker     = errors.New("unknown_worker")
	ErrUnknownJob        = errors.New("unknown_job")
)
