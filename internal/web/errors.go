package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/vizier-org/vizier/engine"
	"github.com/vizier-org/vizier/internal/logging"
	"github.com/vizier-org/vizier/loader"
	"github.com/vizier-org/vizier/render"
)

// badRequestError marks a request-shape problem (missing field, bad value)
// as distinct from pipeline errors.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func badRequestf(format string, args ...any) error {
	return &badRequestError{msg: fmt.Sprintf(format, args...)}
}

// respondError maps pipeline errors to HTTP statuses and logs the detail
// server side. Client errors (bad input, unknown names) map to 4xx; a
// missing rendering engine is 503; everything else is 500.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError

	var (
		badReq      *badRequestError
		unsupported *loader.UnsupportedFormatError
		loadErr     *loader.LoadError
		configErr   *engine.ConfigurationError
		renderErr   *render.RenderError
		unknown     *render.UnknownRendererError
		engineErr   *render.EngineUnavailableError
	)
	switch {
	case errors.As(err, &badReq),
		errors.As(err, &unsupported),
		errors.As(err, &loadErr),
		errors.As(err, &unknown):
		status = http.StatusBadRequest
	case errors.As(err, &configErr), errors.As(err, &renderErr):
		status = http.StatusUnprocessableEntity
	case errors.As(err, &engineErr):
		status = http.StatusServiceUnavailable
	}

	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
	)

	respondJSON(w, status, map[string]string{"error": err.Error()})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encoding response", "error", err)
	}
}
