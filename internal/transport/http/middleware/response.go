package middleware

import (
	"encoding/json"
	"net/http"
)

// writeJSONError writes the middleware-level error envelope. Handlers
// have their own response helpers; this one lets auth, role and
// rate-limit rejections stay JSON without importing the handler package.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(struct {
		Error string `json:"error"`
	}{Error: msg})
}
