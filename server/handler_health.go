package server

import "net/http"

// NewHealthHandler serves GET /health: 200, empty body.
func NewHealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}
}
