package response

import (
	"encoding/json"
	"net/http"
)

// JSON writes a JSON response. Read API data changes with every reaction,
// so responses are never cached.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	enc := json.NewEncoder(w)
	// Keep YouTube query strings readable
	enc.SetEscapeHTML(false)
	_ = enc.Encode(data)
}
