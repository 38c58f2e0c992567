package apperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("encode response")
	}
}

// Write renders err as a JSON error body. Internal errors are logged with
// their cause and reported generically.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request failed")
		WriteJSON(w, status, map[string]string{"error": "internal server error"})
		return
	}

	if len(e.Fields) > 0 {
		WriteJSON(w, status, map[string][]FieldError{"errors": e.Fields})
		return
	}
	WriteJSON(w, status, map[string]string{"error": e.Message})
}

// DecodeJSON reads a JSON request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return Validation("invalid request body")
	}
	return nil
}
