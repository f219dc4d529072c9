package jorudan

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
)

// Predefined errors for the Jorudan client.
var (
	// ErrUnexpectedStatus is returned when Jorudan answers with a non-200 status.
	ErrUnexpectedStatus = errors.New("unexpected status code")

	// ErrInvalidQuery is returned when a query is missing required fields.
	ErrInvalidQuery = errors.New("invalid query")
)

// NodeKind distinguishes the three kinds of suggested places.
type NodeKind string

// Node kinds.
const (
	NodeRailway NodeKind = "R" // railway stations and airports
	NodeBus     NodeKind = "B" // bus stops and ports
	NodeSpot    NodeKind = "S" // landmarks and addresses
)

// SuggestQuery holds parameters for the place suggestion endpoint.
type SuggestQuery struct {
	// Query is the partial place name (required, Japanese).
	Query string

	// MaxRailway, MaxBus and MaxSpot cap each list. Zero leaves the
	// upstream default.
	MaxRailway int
	MaxBus     int
	MaxSpot    int

	// Kinds restricts the returned lists, e.g. "R,B". Empty returns all.
	Kinds string
}

// SuggestResponse is the decoded suggestion payload.
type SuggestResponse struct {
	RespInfo RespInfo `json:"respInfo"`
	Railway  []Place  `json:"R"`
	Bus      []Place  `json:"B"`
	Spots    []Place  `json:"S"`
}

// RespInfo is the metadata block of a suggestion payload.
type RespInfo struct {
	LibVersion string `json:"libVersion"`
	Timestamp  int64  `json:"timestamp"`
	DataTime   string `json:"dataTime"`
	Status     string `json:"status"`
	Version    string `json:"version"`
}

// Place is one suggested station, bus stop or spot.
type Place struct {
	Name     string   `json:"poiName"`
	Yomi     string   `json:"poiYomi"`
	Kind     NodeKind `json:"nodeKind"`
	PrefName string   `json:"prefName"`
	CityName string   `json:"cityName"`
	CityCode *int     `json:"cityCode,omitempty"`
	Location Location `json:"location"`

	// Spot-only fields.
	SpotCode string    `json:"spotCode,omitempty"`
	Address  string    `json:"address,omitempty"`
	Provider *Provider `json:"provider,omitempty"`
}

// Location is a WGS84 coordinate pair as returned by the API.
type Location struct {
	Lat Coordinate `json:"lat"`
	Lon Coordinate `json:"lon"`
}

// Coordinate keeps the upstream textual form of a coordinate. The API sends
// strings but numbers are accepted too.
type Coordinate string

// UnmarshalJSON accepts a JSON string or number.
func (c *Coordinate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = Coordinate(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = Coordinate(n.String())
	return nil
}

// Provider identifies the data source of a spot.
type Provider struct {
	Label    string `json:"label"`
	Identity string `json:"identity"`
	Logo     string `json:"logo"`
}

// RouteDocument is a fetched results page.
type RouteDocument struct {
	// FinalURL is the URL the page was served from after redirects.
	FinalURL *url.URL

	// Body is the decoded HTML.
	Body string
}
