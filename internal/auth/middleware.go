package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

type contextKey struct{}

// Admin is the identity carried by a valid admin token.
type Admin struct {
	ID    int
	Email string
}

// AdminFromContext returns the admin set by AdminAuthMiddleware.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(contextKey{}).(Admin)
	return a, ok
}

// AdminAuthMiddleware accepts requests bearing an HS256 token signed
// with secret and not yet expired.
func AdminAuthMiddleware(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") || len(key) == 0 {
				unauthorized(w)
				return
			}

			claims := jwt.MapClaims{}
			_, err := jwt.ParseWithClaims(strings.TrimPrefix(header, "Bearer "), claims,
				func(*jwt.Token) (any, error) { return key, nil },
				jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
				jwt.WithExpirationRequired(),
			)
			if err != nil {
				log.Debug().Err(err).Msg("rejected admin token")
				unauthorized(w)
				return
			}

			admin := Admin{}
			if id, ok := claims["admin_id"].(float64); ok {
				admin.ID = int(id)
			}
			admin.Email, _ = claims["email"].(string)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, admin)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": "unauthorized", "message": "Unauthorized"})
}
