package mixer

import "errors"

var (
	// ErrRejected is returned by Submit for every admission failure: invalid
	// amounts, capacity reached, code space exhausted, or a closed queue.
	ErrRejected = errors.New("mixer: job rejected")

	// ErrNotCancelable is returned by Cancel when the code is out of range,
	// unknown, or already in a terminal state.
	ErrNotCancelable = errors.New("mixer: job cannot be canceled")

	// ErrQueueClosed is returned when pushing onto a closed submission queue.
	ErrQueueClosed = errors.New("mixer: queue closed")
)
