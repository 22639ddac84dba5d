// Package response writes the JSON bodies shared by handlers and middleware.
package response

import (
	"encoding/json"
	"net/http"
)

// Message is the body of every non-data response. Error carries the
// underlying diagnostic when one is worth exposing.
type Message struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func JSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func Error(w http.ResponseWriter, status int, message string, err error) {
	body := Message{Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	JSON(w, status, body)
}
