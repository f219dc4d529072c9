package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/norikae/norikae/internal/auth"
)

const bearerScheme = "Bearer "

type clientIDKey struct{}

// Auth admits requests carrying a valid bearer token issued by jwtService
// and stores the token subject as the client ID. Rejections are 401 problems
// with an RFC 6750 WWW-Authenticate challenge.
func Auth(jwtService *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				challenge(w, r, "", "missing or malformed bearer token")
				return
			}

			claims, err := jwtService.ValidateAccessToken(token)
			switch {
			case errors.Is(err, auth.ErrAccessTokenExpired):
				challenge(w, r, "invalid_token", "access token has expired")
				return
			case err != nil:
				challenge(w, r, "invalid_token", "invalid access token")
				return
			}

			ctx := context.WithValue(r.Context(), clientIDKey{}, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the token from an Authorization header. The scheme
// is case-insensitive.
func bearerToken(header string) (string, bool) {
	if len(header) < len(bearerScheme) || !strings.EqualFold(header[:len(bearerScheme)], bearerScheme) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerScheme):])
	return token, token != ""
}

func challenge(w http.ResponseWriter, r *http.Request, code, detail string) {
	value := `Bearer realm="norikae"`
	if code != "" {
		value += `, error="` + code + `"`
	}
	w.Header().Set("WWW-Authenticate", value)
	writeProblem(w, r, http.StatusUnauthorized, detail)
}

// GetClientID returns the authenticated client ID, or "" when the request
// was not authenticated.
func GetClientID(ctx context.Context) string {
	if id, ok := ctx.Value(clientIDKey{}).(string); ok {
		return id
	}
	return ""
}
