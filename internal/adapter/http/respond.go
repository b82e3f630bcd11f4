package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"meli-automation/internal/core/port"
)

// writeJSON encodes v to the response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// encoding should rarely fail; log and leave the response as is
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// writeError maps core errors to HTTP status codes: validation failures
// become 400, unknown identifiers 404, already-resolved actions 409, and
// anything else 500 without leaking details.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *port.ValidationError
	switch {
	case errors.As(err, &ve):
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.Is(err, port.ErrNotFound):
		h.writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	case errors.Is(err, port.ErrInvalidState):
		h.writeJSON(w, http.StatusConflict, map[string]string{"error": "action already resolved"})
	default:
		h.logger.Error("internal error",
			slog.String("path", r.URL.Path),
			slog.Any("error", err))
		h.writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
