package middleware

import (
	"encoding/json"
	"net/http"

	"scoremint/internal/service/logger"

	"go.uber.org/zap"
)

// WriteJSON writes body with the given status. Encoding failures are logged;
// the status line has already gone out by then.
func WriteJSON(w http.ResponseWriter, status int, body interface{}, requestID string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.AccessLogger.Error("Failed to encode response",
			zap.String("request_id", requestID),
			zap.Error(err),
		)
	}
}

func WriteError(w http.ResponseWriter, status int, err error, requestID string) {
	WriteJSON(w, status, map[string]string{"error": err.Error()}, requestID)
}
