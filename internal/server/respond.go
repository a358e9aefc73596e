package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/rshade/solar-mining-viability/internal/reference"
	"github.com/rshade/solar-mining-viability/internal/viability"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

var errEmptyBody = errors.New("request body is required")

// decodeJSON reads a size-limited JSON body into dst. It writes the error
// response itself and reports whether decoding succeeded.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	_ = r.Body.Close()
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.respondWithError(w, r, http.StatusRequestEntityTooLarge, "request body too large", "")
			return false
		}
		s.respondWithError(w, r, http.StatusBadRequest, "failed to read request body", "")
		return false
	}
	if len(bytes.TrimSpace(body)) == 0 {
		s.respondWithError(w, r, http.StatusBadRequest, errEmptyBody.Error(), "")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "invalid request payload: "+err.Error(), "")
		return false
	}
	return true
}

// respondWithServiceError maps a service error to a status code.
func (s *Server) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *viability.ValidationError
	switch {
	case errors.As(err, &ve):
		s.respondWithError(w, r, http.StatusBadRequest, ve.Error(), ve.Field)
	case errors.Is(err, reference.ErrNotFound):
		s.respondWithError(w, r, http.StatusNotFound, err.Error(), "")
	default:
		s.logger.Error().
			Err(err).
			Str("request_id", RequestIDFromContext(r.Context())).
			Str("path", r.URL.Path).
			Msg("request failed")
		s.respondWithError(w, r, http.StatusInternalServerError, "internal error", "")
	}
}

func (s *Server) respondWithError(w http.ResponseWriter, r *http.Request, code int, message, field string) {
	s.respondWithJSON(w, code, ErrorResponse{
		Error:     message,
		Field:     field,
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to marshal response")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"error marshaling JSON"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		s.logger.Debug().Err(err).Msg("failed to write response")
	}
}
