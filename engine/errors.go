package engine

import "fmt"

// ConfigurationError reports an invalid transform configuration: a missing
// column reference, a mutually-exclusive-mode violation, or an absent join
// key. Transforms fail fast with it and never return partial results.
type ConfigurationError struct {
	Op     string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func configErrf(op, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}
