package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cherlygood/services"
)

// apiResponse is the structured result every handler returns. The
// presentation layer branches on Success and Message, never on raw errors.
type apiResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

const genericFailureMessage = "Something went wrong. Please reload and try again."

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeData(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, apiResponse{Success: true, Message: message})
}

// writeServiceError maps the service error taxonomy to a structured failure.
// Upstream failures never leak details to the caller.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrValidation):
		writeJSON(w, http.StatusBadRequest, apiResponse{Success: false, Message: err.Error()})
	case errors.Is(err, services.ErrNotFound):
		writeJSON(w, http.StatusNotFound, apiResponse{Success: false, Message: err.Error()})
	case errors.Is(err, services.ErrLimitExceeded):
		writeJSON(w, http.StatusConflict, apiResponse{Success: false, Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, apiResponse{Success: false, Message: genericFailureMessage})
	}
}
