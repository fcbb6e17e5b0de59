// internal/api/respond.go
package api

import (
	"encoding/json"
	"io"
	"net/http"

	apperrors "growth-assistant/internal/common/errors"
)

// ErrorBody is the JSON error envelope returned by every endpoint.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error ErrorBody `json:"error"`
}

func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, statusCode int, code, message string) {
	respondJSON(w, statusCode, errorResponse{Error: ErrorBody{Code: code, Message: message}})
}

// respondStoreError maps store errors onto HTTP statuses.
func respondStoreError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	case apperrors.ErrCodeDuplicateRecord:
		status = http.StatusConflict
	case apperrors.ErrCodeValidationFailed, apperrors.ErrCodeEmptyCart:
		status = http.StatusBadRequest
	case apperrors.ErrCodeRunInProgress:
		status = http.StatusConflict
	}

	message := "An internal server error occurred"
	if se, ok := err.(*apperrors.StandardError); ok && status != http.StatusInternalServerError {
		message = se.Message
	}
	respondError(w, status, string(code), message)
}

// readBody slurps the request body for schema validation before decoding.
func readBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(io.LimitReader(r.Body, 1<<20))
}
