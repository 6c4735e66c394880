package api

import (
	"encoding/json"
	"log"
	"net/http"

	"agora/internal/errors"
)

// errorResponse is the JSON shape of every error reply
type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[api] failed to encode response: %v", err)
	}
}

// writeError maps a coded AppError onto an HTTP status. Domain errors pass
// through errors.FromDomain first so every expected outcome keeps its
// human-readable reason.
func writeError(w http.ResponseWriter, err error) {
	appErr := errors.FromDomain(err)

	status := http.StatusInternalServerError
	switch appErr.Code {
	case errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeEligibilityDenied, errors.CodeStateChanged:
		status = http.StatusForbidden
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeConflict, errors.CodeAlreadyProcessed:
		status = http.StatusConflict
	case errors.CodeExpired:
		status = http.StatusGone
	case errors.CodeUnauthorized:
		status = http.StatusUnauthorized
	}

	if status == http.StatusInternalServerError {
		log.Printf("[api] internal error: %v", appErr)
	}
	writeJSON(w, status, errorResponse{Code: appErr.Code, Error: appErr.Message})
}

// decodeJSON reads a request body into v
func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New(errors.CodeValidationError, "invalid request body")
	}
	return nil
}
