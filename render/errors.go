package render

import (
	"fmt"
	"strings"
)

// RenderError reports a renderer-internal failure, e.g. a chart axis bound
// to a column the table does not have.
type RenderError struct {
	Op     string
	Reason string
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

func renderErrf(op, format string, args ...any) *RenderError {
	return &RenderError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// UnknownRendererError reports a backend name with no registry entry.
type UnknownRendererError struct {
	Name      string
	Available []string
}

func (e *UnknownRendererError) Error() string {
	return fmt.Sprintf("unknown renderer %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// EngineUnavailableError reports a static-image export attempted without a
// headless rendering engine installed.
type EngineUnavailableError struct {
	Format Format
}

func (e *EngineUnavailableError) Error() string {
	return fmt.Sprintf("%s export needs a headless browser (chrome/chromium), none found in PATH", e.Format)
}
