package config

import (
	"fmt"
	"strings"
)

// ValidationError lists the configuration keys that are missing or invalid.
type ValidationError struct {
	Missing []string
	Invalid []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", ")))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, fmt.Sprintf("invalid configuration values: %s", strings.Join(e.Invalid, ", ")))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) hasErrors() bool {
	return len(e.Missing) > 0 || len(e.Invalid) > 0
}
