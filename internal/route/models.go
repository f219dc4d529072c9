// Package route defines the typed model of a Jorudan route search result.
package route

// SearchResult is the outcome of extracting one route search results page.
type SearchResult struct {
	// Routes are the itinerary options in document order.
	Routes []Route `json:"routes"`

	// SearchTime is the wall-clock time of the extraction (RFC 3339, UTC).
	SearchTime string `json:"searchTime"`
}

// WithRoutes returns a copy of the result holding only the given routes.
func (r *SearchResult) WithRoutes(routes []Route) *SearchResult {
	return &SearchResult{
		Routes:     routes,
		SearchTime: r.SearchTime,
	}
}

// Route is one complete itinerary option.
type Route struct {
	// ID is the route block id attribute, or "route_<n>" when absent.
	ID string `json:"id"`

	// RouteNumber is the 1-based position of the block in the document.
	RouteNumber int `json:"routeNumber"`

	Tags     []Tag    `json:"tags"`
	TimeInfo TimeInfo `json:"timeInfo"`
	FareInfo FareInfo `json:"fareInfo"`

	// TotalTime is the overall duration in minutes.
	TotalTime int `json:"totalTime"`

	// Transfers is the number of changes.
	Transfers int `json:"transfers"`

	// TotalDistance in km, nil when the page has no distance row.
	TotalDistance *float64 `json:"totalDistance,omitempty"`

	CO2Info *CO2Info `json:"co2Info,omitempty"`

	// Segments alternate station, transport, station, ...
	Segments []Segment `json:"segments"`

	RouteNotices []Notice `json:"routeNotices,omitempty"`
}

// TimeInfo is the departure/arrival window of a route.
// Empty strings mean the time could not be recovered.
type TimeInfo struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`
}

// HasWindow reports whether both ends of the window are known.
func (t TimeInfo) HasWindow() bool {
	return t.Departure != "" && t.Arrival != ""
}

// FareInfo holds the total fare of a route.
type FareInfo struct {
	// Total in yen, 0 if unrecoverable.
	Total int `json:"total"`

	// AdditionalInfo is the supplemental fare note that follows "＋".
	AdditionalInfo string `json:"additionalInfo,omitempty"`
}

// CO2Info is the emission estimate printed for a route.
type CO2Info struct {
	// Amount keeps its unit suffix, e.g. "380g".
	Amount string `json:"amount"`

	// ReductionRate is a percentage string such as "85%".
	ReductionRate string `json:"reductionRate,omitempty"`

	// Comparison names the reference the rate is measured against.
	Comparison string `json:"comparison,omitempty"`
}

// TagType classifies a route evaluation badge.
type TagType string

const (
	TagFast         TagType = "fast"
	TagComfortable  TagType = "comfortable"
	TagCheap        TagType = "cheap"
	TagCar          TagType = "car"
	TagFewTransfers TagType = "few_transfers"
)

// Tag is an evaluation badge shown on a route.
type Tag struct {
	Type  TagType `json:"type"`
	Label string  `json:"label"`
}

// SegmentKind discriminates the variants of Segment.
type SegmentKind string

const (
	SegmentStation   SegmentKind = "station"
	SegmentTransport SegmentKind = "transport"
)

// Segment is one itinerary row. Exactly one of Station or Transport is set,
// matching Kind.
type Segment struct {
	Kind      SegmentKind    `json:"type"`
	Station   *StationInfo   `json:"station,omitempty"`
	Transport *TransportInfo `json:"transport,omitempty"`
}

// StationSegment wraps a station as a segment.
func StationSegment(s *StationInfo) Segment {
	return Segment{Kind: SegmentStation, Station: s}
}

// TransportSegment wraps a transport leg as a segment.
func TransportSegment(t *TransportInfo) Segment {
	return Segment{Kind: SegmentTransport, Transport: t}
}

// StationType is the role of a station within an itinerary.
type StationType string

const (
	StationStart    StationType = "start"
	StationEnd      StationType = "end"
	StationTransfer StationType = "transfer"
)

// StationInfo describes a stop on the itinerary.
type StationInfo struct {
	Name     string           `json:"name"`
	Type     StationType      `json:"type"`
	Weather  *WeatherInfo     `json:"weather,omitempty"`
	Platform string           `json:"platform,omitempty"`
	Services []StationService `json:"services"`
}

// TransportType is the mode of a transport leg.
type TransportType string

const (
	TransportTrain  TransportType = "train"
	TransportSubway TransportType = "subway"
	TransportBus    TransportType = "bus"
	TransportCar    TransportType = "car"
	TransportTaxi   TransportType = "taxi"
	TransportWalk   TransportType = "walk"
)

// LegTime is the schedule of a single transport leg.
type LegTime struct {
	Departure string `json:"departure"`
	Arrival   string `json:"arrival"`

	// Duration in minutes.
	Duration int `json:"duration"`
}

// TransportInfo describes a ride or walk between two stations.
type TransportInfo struct {
	Type      TransportType `json:"type"`
	LineName  string        `json:"lineName"`
	Direction string        `json:"direction,omitempty"`
	Operator  string        `json:"operator,omitempty"`
	TimeInfo  LegTime       `json:"timeInfo"`

	// Fare in yen, nil when the leg has no fare cell.
	Fare *int `json:"fare,omitempty"`

	Distance string `json:"distance,omitempty"`
}

// WeatherCondition is the coarse weather at a station.
type WeatherCondition string

const (
	WeatherSunny  WeatherCondition = "sunny"
	WeatherCloudy WeatherCondition = "cloudy"
	WeatherRainy  WeatherCondition = "rainy"
	WeatherSnowy  WeatherCondition = "snowy"
)

// WeatherInfo is the weather forecast icon attached to a station.
type WeatherInfo struct {
	Condition   WeatherCondition `json:"condition"`
	IconURL     string           `json:"iconUrl"`
	Description string           `json:"description"`
}

// ServiceType classifies a station link.
type ServiceType string

const (
	ServiceTimetable ServiceType = "timetable"
	ServiceMap       ServiceType = "map"
	ServiceRouteMap  ServiceType = "route_map"
	ServiceFloorPlan ServiceType = "floor_plan"
	ServiceCoupon    ServiceType = "coupon"
	ServiceGourmet   ServiceType = "gourmet"
	ServiceExitInfo  ServiceType = "exit_info"
)

// StationService is a link offered for a station (timetable, map, ...).
type StationService struct {
	Type ServiceType `json:"type"`
	Name string      `json:"name"`
	URL  string      `json:"url,omitempty"`
}

// NoticeType classifies a route notice.
type NoticeType string

const (
	NoticeRouteChange NoticeType = "route_change"
)

// Notice is an advisory attached to a route.
type Notice struct {
	Type        NoticeType `json:"type"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
}
