package models

// DatetimeType selects how the route search datetime is interpreted.
type DatetimeType string

const (
	DatetimeDeparture DatetimeType = "departure"
	DatetimeArrival   DatetimeType = "arrival"
	DatetimeFirst     DatetimeType = "first"
	DatetimeLast      DatetimeType = "last"
)

// RouteSearchRequest is the body of POST /v1/routes:search.
type RouteSearchRequest struct {
	From         string       `json:"from" validate:"required,max=100"`
	To           string       `json:"to" validate:"required,max=100"`
	DatetimeType DatetimeType `json:"datetimeType,omitempty" validate:"omitempty,oneof=departure arrival first last"`

	// Datetime is "YYYY-MM-DD HH:MM[:SS]" in Japan time; empty means now.
	Datetime  string `json:"datetime,omitempty" validate:"max=32"`
	MaxTokens *int   `json:"maxTokens,omitempty" validate:"omitempty,gte=0"`
}

// PlaceSearchParams are the query parameters of GET /v1/places.
type PlaceSearchParams struct {
	Query     string `json:"q" validate:"required,max=100"`
	MaxTokens *int   `json:"maxTokens" validate:"omitempty,gte=0"`
	OnlyName  bool   `json:"onlyName"`
}
