package middleware

import "net/http"

// securityHeaders are set on every response. Search results depend on the
// current time, so nothing is cacheable.
var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Strict-Transport-Security", "max-age=31536000; includeSubDomains"},
	{"Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'"},
	{"Referrer-Policy", "no-referrer"},
	{"Cache-Control", "no-store"},
}

// SecurityHeaders adds the API's security and caching headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for _, h := range securityHeaders {
			w.Header().Set(h[0], h[1])
		}
		next.ServeHTTP(w, r)
	})
}

// RequireTLS returns a middleware that rejects plain-HTTP requests with a
// 403 problem when enabled. Behind a proxy the X-Forwarded-Proto header
// decides. Direct connections without the header pass, since the listener
// itself may sit behind a TLS-terminating proxy that omits it.
func RequireTLS(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requestScheme(r) != "https" && r.Header.Get("X-Forwarded-Proto") != "" {
				writeProblem(w, r, http.StatusForbidden, "This endpoint requires HTTPS")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
