package models

import (
	"encoding/json"
	"net/http"
)

// Problem is an RFC 7807 error document, served as application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	// For upstream failures it is the single-line search error.
	Detail string `json:"detail,omitempty"`

	// Instance is the request path.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request ID, echoed in X-Request-Id.
	TraceID string `json:"traceId"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Problem types.
const (
	ProblemTypeValidation       = "https://norikae.dev/problems/validation-error"
	ProblemTypeUnauthorized     = "https://norikae.dev/problems/unauthorized"
	ProblemTypeTLSRequired      = "https://norikae.dev/problems/tls-required"
	ProblemTypeNotFound         = "https://norikae.dev/problems/not-found"
	ProblemTypeMethodNotAllowed = "https://norikae.dev/problems/method-not-allowed"
	ProblemTypeMediaType        = "https://norikae.dev/problems/unsupported-media-type"
	ProblemTypeTooManyRequests  = "https://norikae.dev/problems/too-many-requests"
	ProblemTypeInternal         = "https://norikae.dev/problems/internal-error"
	ProblemTypeUpstream         = "https://norikae.dev/problems/upstream-error"
	ProblemTypeUnavailable      = "https://norikae.dev/problems/service-unavailable"
)

type problemKind struct {
	typ   string
	title string
}

// kinds lists every status the API answers with.
var kinds = map[int]problemKind{
	http.StatusBadRequest:           {ProblemTypeValidation, "Validation error"},
	http.StatusUnauthorized:         {ProblemTypeUnauthorized, "Unauthorized"},
	http.StatusForbidden:            {ProblemTypeTLSRequired, "TLS required"},
	http.StatusNotFound:             {ProblemTypeNotFound, "Not found"},
	http.StatusMethodNotAllowed:     {ProblemTypeMethodNotAllowed, "Method not allowed"},
	http.StatusUnsupportedMediaType: {ProblemTypeMediaType, "Unsupported media type"},
	http.StatusTooManyRequests:      {ProblemTypeTooManyRequests, "Too many requests"},
	http.StatusInternalServerError:  {ProblemTypeInternal, "Internal server error"},
	http.StatusBadGateway:           {ProblemTypeUpstream, "Upstream error"},
	http.StatusServiceUnavailable:   {ProblemTypeUnavailable, "Service unavailable"},
}

// New creates the problem for status. A status outside the API's set gets
// the RFC 7807 "about:blank" type and the standard status text.
func New(status int, traceID, detail string) *Problem {
	kind, ok := kinds[status]
	if !ok {
		kind = problemKind{typ: "about:blank", title: http.StatusText(status)}
	}
	return &Problem{
		Type:    kind.typ,
		Title:   kind.title,
		Status:  status,
		Detail:  detail,
		TraceID: traceID,
	}
}

// NewBadRequest creates a 400 problem carrying field errors.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	return New(http.StatusBadRequest, traceID, detail).WithErrors(errors)
}

// WithInstance sets the request path.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithErrors sets the field errors.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}
