package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrConfigInvalid is wrapped by every configuration validation failure.
var ErrConfigInvalid = errors.New("config invalid")

// Issue captures a validation problem with a config field.
type Issue struct {
	Field   string
	Message string
}

// ValidationError aggregates config validation issues.
type ValidationError struct {
	Issues []Issue
}

// Error renders validation errors as a multi-line string.
func (err *ValidationError) Error() string {
	if err == nil || len(err.Issues) == 0 {
		return "config validation failed"
	}
	lines := make([]string, 0, len(err.Issues))
	for _, issue := range err.Issues {
		lines = append(lines, fmt.Sprintf("%s: %s", issue.Field, issue.Message))
	}
	return strings.Join(lines, "\n")
}

// Unwrap lets callers match validation failures with errors.Is(err, ErrConfigInvalid).
func (err *ValidationError) Unwrap() error {
	return ErrConfigInvalid
}
