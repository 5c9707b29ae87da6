package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const internalErrorMessage = "Erro interno do servidor"

// Envelope wraps every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Send a successful envelope carrying data
func RespondWithSuccess(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	RespondWithJSON(w, statusCode, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Send a standardized JSON error response
func RespondWithError(w http.ResponseWriter, statusCode int, message string) {
	RespondWithJSON(w, statusCode, Envelope{
		Success: false,
		Message: message,
	})
}

// RespondWithValidationErrors answers 400 with one entry per violated field rule.
func RespondWithValidationErrors(w http.ResponseWriter, message string, errs interface{}) {
	RespondWithJSON(w, http.StatusBadRequest, Envelope{
		Success: false,
		Message: message,
		Errors:  errs,
	})
}

// RespondWithInternalError hides err from the client unless exposeDetail is set.
func RespondWithInternalError(w http.ResponseWriter, err error, exposeDetail bool) {
	response := Envelope{
		Success: false,
		Message: internalErrorMessage,
	}
	if exposeDetail && err != nil {
		response.Error = err.Error()
	}
	RespondWithJSON(w, http.StatusInternalServerError, response)
}

func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
