package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/exp/slog"

	resp "go-wingo/internal/lib/api/response"
	"go-wingo/internal/lib/logger/sl"
)

const RoleAdmin = "admin"

type Claims struct {
	UserUUID string `json:"user_uuid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type contextKey struct{}

var claimsKey contextKey

// New returns middleware that validates the bearer token and stores its
// claims in the request context.
func New(log *slog.Logger, secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.auth.New"

			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("missing bearer token", http.StatusUnauthorized))

				return
			}

			token := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}

			parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
				return []byte(secret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !parsed.Valid {
				if err != nil {
					log.With(slog.String("op", op)).Warn("token rejected", sl.Err(err))
				}

				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("invalid token", http.StatusUnauthorized))

				return
			}

			next.ServeHTTP(w, r.WithContext(
				context.WithValue(r.Context(), claimsKey, claims)))
		})
	}
}

// RequireAdmin rejects callers whose token does not carry the admin role.
func RequireAdmin(log *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok || claims.Role != RoleAdmin {
				render.Status(r, http.StatusForbidden)
				render.JSON(w, r, resp.Error("admin only", http.StatusForbidden))

				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)

	return claims, ok
}
