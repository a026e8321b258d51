// File: internal/handlers/helpers.go

// Package handlers exposes the HTTP surface: auth, bots, chats and the tool
// proxy endpoints. Handlers decode JSON, call a service and encode the
// response; domain decisions live in the services.
package handlers

import (
	"encoding/json"
	"net/http"

	"personachat/internal/middleware"
)

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// requireUserID pulls the authenticated user out of the request context. The
// auth middleware guarantees it on protected routes; a miss means the route
// was wired without it.
func requireUserID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return 0, false
	}
	return userID, true
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
