package llm

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/googleapi"
)

// ErrorKind classifies a failed collaborator call for retry decisions.
type ErrorKind string

const (
	// KindTransient covers network and server-side failures worth retrying.
	KindTransient ErrorKind = "transient"
	// KindRateLimit means the provider rejected the call with a quota error.
	KindRateLimit ErrorKind = "rate_limit"
	// KindTimeout means the per-call deadline elapsed.
	KindTimeout ErrorKind = "timeout"
	// KindCredential means the API key is missing or was rejected.
	KindCredential ErrorKind = "credential"
	// KindMalformed means structured output was required but unparseable.
	KindMalformed ErrorKind = "malformed"
)

// GenerationError describes a failed generation call
type GenerationError struct {
	Op    string
	Model string
	Kind  ErrorKind
	Cause error
}

func (e *GenerationError) Error() string {
	if e.Model != "" {
		return fmt.Sprintf("llm %s (%s): %s: %v", e.Op, e.Model, e.Kind, e.Cause)
	}
	return fmt.Sprintf("llm %s: %s: %v", e.Op, e.Kind, e.Cause)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Retryable reports whether an attempt loop may try the call again.
// Credential failures are permanent; everything else is worth a retry.
func (e *GenerationError) Retryable() bool {
	switch e.Kind {
	case KindTransient, KindRateLimit, KindTimeout, KindMalformed:
		return true
	}
	return false
}

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = &GenerationError{
	Op:    "init",
	Kind:  KindCredential,
	Cause: errors.New("API key is required (set GEMINI_API_KEY or use --api-key)"),
}

// Classify wraps a raw provider error with a retry classification.
func Classify(op, model string, err error) *GenerationError {
	kind := KindTransient

	var apiErr *googleapi.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	case errors.As(err, &apiErr):
		switch apiErr.Code {
		case 429:
			kind = KindRateLimit
		case 401, 403:
			kind = KindCredential
		}
	}

	return &GenerationError{Op: op, Model: model, Kind: kind, Cause: err}
}

// IsRetryable reports whether err is a generation error worth retrying.
// Non-generation errors (context cancellation, I/O) are not retryable.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Retryable()
	}
	return false
}
