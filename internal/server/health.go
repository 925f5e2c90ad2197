package server

import "net/http"

// HandleHealth returns the handler for GET /healthz. The daemon only
// starts listening after hydration, so serving at all means ready.
func HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
