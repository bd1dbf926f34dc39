package model

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by the classification packages.
var (
	// ErrNotEnoughData means a classifier or filter lacks a signal it needs.
	// It is recovered locally: classifiers turn it into an inconclusive
	// verdict and filters keep the page.
	ErrNotEnoughData = errors.New("not enough data")

	// ErrConfiguration marks an invalid pipeline configuration. It is only
	// returned while a pipeline is being constructed, never while classifying.
	ErrConfiguration = errors.New("configuration error")
)

// NotEnoughDataError carries the human-readable reason a signal is missing.
// Its message is what appears in a verdict's "error" field.
type NotEnoughDataError struct {
	Reason string
}

// NotEnoughData builds a NotEnoughDataError from a format string.
func NotEnoughData(format string, args ...any) error {
	return &NotEnoughDataError{Reason: fmt.Sprintf(format, args...)}
}

// Error returns the reason.
func (e *NotEnoughDataError) Error() string {
	return e.Reason
}

// Is makes errors.Is(err, ErrNotEnoughData) hold.
func (e *NotEnoughDataError) Is(target error) bool {
	return target == ErrNotEnoughData
}
