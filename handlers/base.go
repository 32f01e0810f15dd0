package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Noah-Huppert/golog"
)

// BaseHandler provides helper methods and commonly used variables for status
// server endpoints to base their http.Handlers off
type BaseHandler struct {
	// Logger logs information
	Logger golog.Logger
}

// GetChild makes a child instance of the base handler with a prefix
func (h BaseHandler) GetChild(prefix string) BaseHandler {
	h.Logger = h.Logger.GetChild(prefix)

	return h
}

// RespondJSON sends an object as a JSON encoded response
func (h BaseHandler) RespondJSON(w http.ResponseWriter, status int, resp interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	if err := encoder.Encode(resp); err != nil {
		panic(fmt.Errorf("failed to encode response as JSON: %s", err.Error()))
	}
}
