package middleware

import (
	"net/http"
	"strings"

	"github.com/Leadpipe/leadpipe/internal/domain"
	"github.com/Leadpipe/leadpipe/pkg/logger"
)

// RequireAuth validates the bearer token on every request and puts the
// authenticated user's ID in the request context.
func RequireAuth(authService domain.AuthServiceInterface, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" || !strings.HasPrefix(header, "Bearer ") {
				unauthorized(w)
				return
			}

			token := strings.TrimPrefix(header, "Bearer ")
			user, err := authService.VerifyToken(r.Context(), token)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx := domain.WithUserID(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized"}`))
}
