// Package providers implements model completion backends with retry and
// ordered model fallback.
package providers

import (
	"context"
	"errors"
	"fmt"
)

// ErrExhausted is returned when every configured model has been tried
// without producing a completion.
var ErrExhausted = errors.New("all models exhausted")

// ProviderError wraps a failed completion attempt with the model it was
// made against and the HTTP status, when one is known.
type ProviderError struct {
	Model      string
	StatusCode int
	Cause      error
}

func (e *ProviderError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("model %s: status %d: %v", e.Model, e.StatusCode, e.Cause)
	}
	return fmt.Sprintf("model %s: %v", e.Model, e.Cause)
}

func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// ErrorClass categorizes a failed attempt for retry purposes.
type ErrorClass int

const (
	// ClassOther covers errors that retrying the same model will not fix.
	ClassOther ErrorClass = iota
	// ClassTransient covers server-side failures worth retrying.
	ClassTransient
	// ClassOverloaded covers throttling and overload responses.
	ClassOverloaded
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassOverloaded:
		return "overloaded"
	default:
		return "other"
	}
}

// Classify maps an attempt error to its retry class. Transient and
// overloaded errors are retried on the same model with backoff; anything
// else moves straight to the next model.
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassOther
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}
	var pe *ProviderError
	if errors.As(err, &pe) {
		switch {
		case pe.StatusCode == 429 || pe.StatusCode == 529:
			return ClassOverloaded
		case pe.StatusCode >= 500:
			return ClassTransient
		}
	}
	return ClassOther
}
