package internal

import (
	"encoding/json"
	"net/http"
	"time"
)

// errorResponse is the JSON body of every API failure
type errorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// listResponse wraps a collection with response metadata
type listResponse struct {
	Data interface{} `json:"data"`
	Meta listMeta    `json:"meta"`
}

type listMeta struct {
	Count     int    `json:"count"`
	Timestamp string `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, details string) {
	writeJSON(w, status, errorResponse{Error: code, Details: details})
}

// sendListResponse writes items with their count
func sendListResponse(w http.ResponseWriter, items interface{}, count int, now time.Time) {
	writeJSON(w, http.StatusOK, listResponse{
		Data: items,
		Meta: listMeta{
			Count:     count,
			Timestamp: now.UTC().Format(time.RFC3339),
		},
	})
}
