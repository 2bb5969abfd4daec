package response

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

// Response is the envelope of every JSON reply.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Meta    any    `json:"meta,omitempty"`
	Error   string `json:"error,omitempty"`
}

func write(w http.ResponseWriter, statusCode int, body Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func SendSuccess(w http.ResponseWriter, statusCode int, message string, data any) {
	write(w, statusCode, Response{Success: true, Message: message, Data: data})
}

func SendSuccessNoData(w http.ResponseWriter, statusCode int, message string) {
	write(w, statusCode, Response{Success: true, Message: message})
}

func SendError(w http.ResponseWriter, statusCode int, message string) {
	write(w, statusCode, Response{Success: false, Error: message})
}
