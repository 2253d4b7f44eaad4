package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/frahmantamala/star-supla/pkg/logger"
)

const (
	SessionKeyHeader = "x-SessionKey"
	ProjectIDHeader  = "x-ProjectId"
)

// RequireSession rejects requests whose x-SessionKey is not accepted by
// valid, answering 401 with a message envelope.
func RequireSession(valid func(string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionKey := r.Header.Get(SessionKeyHeader)
			if sessionKey == "" || !valid(sessionKey) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "session key is missing or expired"})
				return
			}

			ctx := logger.With(r.Context(), "projectID", r.Header.Get(ProjectIDHeader))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
