package middleware

import (
	"mime"
	"net/http"
)

const mediaTypeJSON = "application/json"

// ContentTypeJSON defaults the response Content-Type to JSON. Handlers that
// write plain text set their own before writing.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", mediaTypeJSON)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireJSON answers 415 when the request declares a body that is not
// JSON. A missing Content-Type is accepted.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if declared := r.Header.Get("Content-Type"); declared != "" && !isJSON(declared) {
			writeProblem(w, r, http.StatusUnsupportedMediaType,
				"request body must be "+mediaTypeJSON+", got "+declared)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == mediaTypeJSON
}
