package server

import (
	"encoding/json"
	"net/http"

	"github.com/transport-authority/vehicle-registry/pkg/registryerrors"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Code    registryerrors.Code `json:"code"`
	Message string              `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps a registry error code onto its HTTP status: not-found
// 404, validation 422, conflict 409, everything else 500.
func writeError(w http.ResponseWriter, err error) {
	code := registryerrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case registryerrors.CodeNotFound:
		status = http.StatusNotFound
	case registryerrors.CodeValidation:
		status = http.StatusUnprocessableEntity
	case registryerrors.CodeConflict:
		status = http.StatusConflict
	}

	msg := registryerrors.MessageOf(err)
	if status == http.StatusInternalServerError {
		// Internal details stay in the logs.
		msg = "internal error"
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    registryerrors.CodeValidation,
		Message: message,
	})
}
