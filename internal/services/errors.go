package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrValidation marks query validation failures (empty main query,
	// episode filter without a season filter).
	ErrValidation = errors.New("validation error")
	// ErrNotFound marks empty search results and missing external records.
	ErrNotFound = errors.New("not found")
	// ErrResolution marks metadata service failures scoped to one branch of
	// the fetch tree (show, season, or episode level).
	ErrResolution = errors.New("resolution error")
	// ErrReconciliation marks destination store write failures.
	ErrReconciliation = errors.New("reconciliation error")
	// ErrConfiguration marks missing or invalid client configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes component context while tagging
// it with the provided marker for later classification. The marker should be
// one of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrResolution
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// UserMessage strips the sentinel prefix from a wrapped error, leaving the
// human-readable portion suitable for a page annotation.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, marker := range []error{ErrValidation, ErrNotFound, ErrResolution, ErrReconciliation, ErrConfiguration} {
		prefix := marker.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
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
