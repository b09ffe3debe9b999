package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sakif/piston-go/internal/apperror"
)

// KeyVerifier checks a presented API key against a stored hash.
type KeyVerifier interface {
	Verify(hash, key string) error
}

// RequireAPIKey rejects requests whose Authorization header does not match hash.
// An empty hash disables the check.
func RequireAPIKey(keys KeyVerifier, hash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if hash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("Authorization")
			if key == "" {
				writeMessage(w, http.StatusUnauthorized, "api key is required")
				return
			}
			if err := keys.Verify(hash, key); err != nil {
				if errors.Is(err, apperror.ErrUnauthorized) {
					writeMessage(w, http.StatusUnauthorized, "invalid api key")
					return
				}
				writeMessage(w, http.StatusInternalServerError, "an internal error occurred")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeMessage sends a Piston-style {"message": ...} error body.
func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
