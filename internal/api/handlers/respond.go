package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

// RequestIDHeader carries the id assigned to each request
const RequestIDHeader = "X-Request-ID"

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string, err error) {
	body := map[string]any{
		"success": false,
		"error":   msg,
	}
	if err != nil {
		body["message"] = err.Error()
	}
	writeJSON(w, status, body)
}

func parseFloatParam(r *http.Request, name string) (float64, error) {
	str := r.URL.Query().Get(name)
	if str == "" {
		return 0, fmt.Errorf("%s query parameter is required", name)
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return v, nil
}
