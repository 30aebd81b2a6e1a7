package internal

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrResourceUnavailable = errors.New("resource unavailable")
	ErrTrainingFailure     = errors.New("training failed")
	ErrNotInitialized      = errors.New("model not initialized")
	ErrWordNotFound        = errors.New("word not in vocabulary")
	ErrDocumentSkipped     = errors.New("document skipped")
	ErrCanceled            = errors.New("canceled")
)

// ErrorKind is the short, stable name of a pipeline failure class.
type ErrorKind string

const (
	KindNone                ErrorKind = ""
	KindResourceUnavailable ErrorKind = "resource_unavailable"
	KindTrainingFailure     ErrorKind = "training_failure"
	KindNotInitialized      ErrorKind = "not_initialized"
	KindWordNotFound        ErrorKind = "word_not_found"
	KindDocumentSkipped     ErrorKind = "document_skipped"
	KindCanceled            ErrorKind = "canceled"
	KindUnknown             ErrorKind = "unknown"
)

var kinds = []struct {
	sentinel error
	kind     ErrorKind
}{
	{ErrResourceUnavailable, KindResourceUnavailable},
	{ErrTrainingFailure, KindTrainingFailure},
	{ErrNotInitialized, KindNotInitialized},
	{ErrWordNotFound, KindWordNotFound},
	{ErrDocumentSkipped, KindDocumentSkipped},
	{ErrCanceled, KindCanceled},
}

// KindOf classifies err by the sentinel it wraps. A context cancellation or
// deadline anywhere in the chain wins over the failure class around it.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return KindCanceled
	}
	for _, k := range kinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}
	return KindUnknown
}

func resourceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrResourceUnavailable, op, err)
}

func trainingError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrTrainingFailure, op, err)
}

func canceledError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrCanceled, op, err)
}
