package auth

import (
	"net/http"
	"strings"
)

// TokenFromRequest extracts a session token from the Authorization header
// or the token query parameter
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	return r.URL.Query().Get("token")
}
