package api

import (
	"encoding/json"
	"net/http"

	"github.com/eyabmansour/pfe-licence-api/internal/apperrors"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Anything
// outside the taxonomy is a 500 with a generic body; the real cause
// goes to the log, not the client.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	msg := "internal server error"

	switch apperrors.KindOf(err) {
	case apperrors.KindNotFound:
		status = http.StatusNotFound
		msg = err.Error()
	case apperrors.KindValidation:
		status = http.StatusBadRequest
		msg = err.Error()
	case apperrors.KindInvalidState, apperrors.KindInvalidTransition:
		status = http.StatusConflict
		msg = err.Error()
	case apperrors.KindForbidden:
		status = http.StatusForbidden
		msg = err.Error()
	}

	writeJSON(w, status, errorBody{Error: msg})
}

func decodeJSON(r *http.Request, dest interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return apperrors.Validation("invalid request body: %v", err)
	}
	return nil
}
