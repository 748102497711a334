package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/joseph-ayodele/maintdoc-analyzer/internal/common"
	"github.com/joseph-ayodele/maintdoc-analyzer/internal/reports"
)

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

type errorBody struct {
	Error string `json:"error"`
}

// respondError maps application errors onto HTTP status codes.
func (s *Server) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, common.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, common.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, common.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, reports.ErrModelUnavailable):
		status = http.StatusServiceUnavailable
	}

	if status == http.StatusInternalServerError {
		s.log.Error("http.error", "error", err)
		respondJSON(w, status, errorBody{Error: "internal server error"})
		return
	}
	respondJSON(w, status, errorBody{Error: err.Error()})
}
