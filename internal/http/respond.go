package httpapp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cesargomez89/mixtape/internal/constants"
	"github.com/cesargomez89/mixtape/internal/http/dto"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", constants.MimeTypeJSON)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client gone
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, dto.ErrorResponse{Error: message})
}

// writeFailure reports a 500 for op with the underlying error as details.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.Logger.Error(op, "error", err, "path", r.URL.Path)
	writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: op, Details: err.Error()})
}

func writeValidation(w http.ResponseWriter, message string, errs []dto.ValidationError) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
		Error:   message,
		Details: dto.ToResponse(errs),
		Fields:  dto.ToMap(errs),
	})
}

func healthResponse() dto.HealthResponse {
	return dto.HealthResponse{Status: "ok", Service: constants.ServiceName}
}

func isMaxBytes(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
