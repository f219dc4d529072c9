// Package response writes API responses: JSON for the ops endpoints, plain
// text for search results and problem documents for errors. Every response
// echoes the request ID.
package response

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/norikae/norikae/internal/api/middleware"
	"github.com/norikae/norikae/internal/api/models"
)

// JSON writes data as a JSON response with the given status code.
func JSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// Text writes body as a UTF-8 plain-text response with the given status code.
func Text(w http.ResponseWriter, r *http.Request, status int, body string) {
	setRequestID(w, r)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// Problem writes the problem document for status.
func Problem(w http.ResponseWriter, r *http.Request, status int, detail string) {
	Error(w, r, models.New(status, middleware.GetRequestID(r.Context()), detail))
}

// BadRequest writes a 400 problem with field errors.
func BadRequest(w http.ResponseWriter, r *http.Request, detail string, errors []models.FieldError) {
	Error(w, r, models.NewBadRequest(middleware.GetRequestID(r.Context()), detail, errors))
}

// Error writes problem with the request path as its instance.
func Error(w http.ResponseWriter, r *http.Request, problem *models.Problem) {
	problem.WithInstance(r.URL.Path).Write(w)
}

func setRequestID(w http.ResponseWriter, r *http.Request) {
	if requestID := middleware.GetRequestID(r.Context()); requestID != "" {
		w.Header().Set(middleware.HeaderRequestID, requestID)
	}
}
