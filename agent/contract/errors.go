package contract

import (
	"context"
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("handler not found")
	ErrRemoteService    = errors.New("remote service failure")
	ErrConfiguration    = errors.New("configuration error")
	ErrDuplicateHandler = errors.New("handler already registered")
	ErrRegistryFrozen   = errors.New("registry is frozen")
	ErrSchemaViolation  = errors.New("model response violates schema")
	ErrValidation       = errors.New("validation failed")
)

// MissingConfigError lists every required configuration value that was absent.
type MissingConfigError struct {
	Missing []string
}

func (e *MissingConfigError) Error() string {
	return "configuration error: missing required values: " + strings.Join(e.Missing, ", ")
}

func (e *MissingConfigError) Unwrap() error {
	return ErrConfiguration
}

// NewMissingConfigError returns nil when nothing is missing.
// Names are deduplicated and sorted.
func NewMissingConfigError(missing ...string) error {
	if len(missing) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(missing))
	out := make([]string, 0, len(missing))
	for _, m := range missing {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return &MissingConfigError{Missing: out}
}

// KindOf maps a wrapped sentinel to the envelope error kind.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConfiguration):
		return KindConfiguration
	case errors.Is(err, ErrRemoteService), errors.Is(err, ErrSchemaViolation):
		return KindRemoteServiceFailure
	case errors.Is(err, ErrValidation):
		return KindInvalidRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}
