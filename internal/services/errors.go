package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTransient marks recoverable external failures: timeouts, HTTP
	// errors, malformed responses. The sweep logs these and moves on.
	ErrTransient = errors.New("transient failure")
	// ErrNotFound marks the expected no-result outcome of a search.
	ErrNotFound = errors.New("not found")
	// ErrAuth marks catalog authentication failures; the session manager
	// retries once with a fresh session before surfacing this.
	ErrAuth = errors.New("authentication failure")
	// ErrValidation marks malformed input that no retry can fix.
	ErrValidation = errors.New("validation error")
	// ErrConfiguration marks missing or inconsistent configuration. Fatal at
	// startup, never handled per item.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error that carries component and operation context while
// tagging it with the provided sentinel for later classification. The marker
// should be one of the exported sentinels above; nil defaults to
// ErrTransient.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsRetryable reports whether an error should leave the item eligible for
// the next scheduled sweep rather than a terminal failed status.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransient) || errors.Is(err, ErrAuth)
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
