package service

import (
	"errors"
	"fmt"
)

// ErrInvalidText is returned when a text is missing or shorter than the
// minimum accepted for classification.
var ErrInvalidText = errors.New("text too short or invalid")

// ErrInvalidCount is returned when a stats request asks for a
// non-positive number of comments.
var ErrInvalidCount = errors.New("count must be greater than zero")

// BatchError reports a failure to read or parse an uploaded batch file.
// Per-row classification failures are not batch errors; they only drop
// the affected row.
type BatchError struct {
	Err error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("failed to process batch file: %v", e.Err)
}

func (e *BatchError) Unwrap() error {
	return e.Err
}
