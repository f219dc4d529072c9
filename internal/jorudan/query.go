package jorudan

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// SearchMode selects what the query datetime means.
type SearchMode int

// Search modes, numbered as the Cway parameter expects.
const (
	ModeDeparture SearchMode = iota // depart at or after
	ModeArrival                     // arrive by
	ModeFirst                       // first train of the day
	ModeLast                        // last train of the day
)

var searchModeNames = map[SearchMode]string{
	ModeDeparture: "departure",
	ModeArrival:   "arrival",
	ModeFirst:     "first",
	ModeLast:      "last",
}

func (m SearchMode) String() string {
	if name, ok := searchModeNames[m]; ok {
		return name
	}
	return "SearchMode(" + strconv.Itoa(int(m)) + ")"
}

// ParseSearchMode parses "departure", "arrival", "first" or "last".
func ParseSearchMode(s string) (SearchMode, error) {
	for mode, name := range searchModeNames {
		if name == s {
			return mode, nil
		}
	}
	return ModeDeparture, fmt.Errorf("%w: unknown search mode %q", ErrInvalidQuery, s)
}

// SortOrder orders the returned routes.
type SortOrder string

// Sort orders.
const (
	SortRecommended SortOrder = "rec"
	SortTime        SortOrder = "time" // earliest arrival / latest departure
	SortFast        SortOrder = "fast"
	SortChange      SortOrder = "change"
	SortCheap       SortOrder = "cheap"
)

const (
	busStopMarker      = "〔"
	busStopMarkerAlt   = "［"
	railwayStationKind = "R-"
	busStopKind        = "B-"

	maxVia = 4
)

// RouteSearchQuery holds the parameters of a route search. Use
// NewRouteSearchQuery to get the defaults of the public search form.
type RouteSearchQuery struct {
	From string
	To   string

	// Via lists up to four intermediate stations.
	Via []string

	At   time.Time
	Mode SearchMode
	Sort SortOrder

	// Search options, named after what they control on the search form.
	FareType       int // Cfp: 1 IC card fare
	Zipangu        int // Czu: 2 no Zipangu club discount
	Commuter       int // C7: 1 commuter pass
	Airplane       int // C2: 0 automatic
	HighwayBus     int // C3: 0 automatic
	LimitedExpress int // C1: 0 automatic
	CarTaxi        int // cartaxy: 1 include car and taxi legs
	BikeShare      int // bikeshare: 1 include shared bicycles
	SeatType       int // C4: 5 automatic
	PreferredTrain int // C5: 0 prefer Nozomi
	TransferTime   int // C6: 2 standard
	Page           int // pg
}

// NewRouteSearchQuery returns a query with the default search options.
func NewRouteSearchQuery(from, to string, mode SearchMode, at time.Time) RouteSearchQuery {
	return RouteSearchQuery{
		From:           from,
		To:             to,
		At:             at,
		Mode:           mode,
		Sort:           SortTime,
		FareType:       1,
		Zipangu:        2,
		Commuter:       1,
		Airplane:       0,
		HighwayBus:     0,
		LimitedExpress: 0,
		CarTaxi:        1,
		BikeShare:      1,
		SeatType:       5,
		PreferredTrain: 0,
		TransferTime:   2,
		Page:           0,
	}
}

// Validate checks the query can be sent.
func (q RouteSearchQuery) Validate() error {
	switch {
	case strings.TrimSpace(q.From) == "":
		return fmt.Errorf("%w: origin is required", ErrInvalidQuery)
	case strings.TrimSpace(q.To) == "":
		return fmt.Errorf("%w: destination is required", ErrInvalidQuery)
	case len(q.Via) > maxVia:
		return fmt.Errorf("%w: at most %d via stations", ErrInvalidQuery, maxVia)
	case q.At.IsZero():
		return fmt.Errorf("%w: datetime is required", ErrInvalidQuery)
	}
	if _, ok := searchModeNames[q.Mode]; !ok {
		return fmt.Errorf("%w: unknown search mode %d", ErrInvalidQuery, int(q.Mode))
	}
	return nil
}

// Values encodes the query as nori.cgi parameters. The minute is split into
// its tens (Dmn1) and ones (Dmn2) digits.
func (q RouteSearchQuery) Values() url.Values {
	v := url.Values{}
	v.Set("eki1", q.From)
	v.Set("eki2", q.To)

	v.Set("via_on", "-1")
	if len(q.Via) > 0 {
		v.Set("via_on", "1")
		for i, via := range q.Via {
			v.Set("eki"+strconv.Itoa(i+3), via)
		}
	}

	v.Set("Dyy", strconv.Itoa(q.At.Year()))
	v.Set("Dmm", strconv.Itoa(int(q.At.Month())))
	v.Set("Ddd", strconv.Itoa(q.At.Day()))
	v.Set("Dhh", strconv.Itoa(q.At.Hour()))
	v.Set("Dmn1", strconv.Itoa(q.At.Minute()/10))
	v.Set("Dmn2", strconv.Itoa(q.At.Minute()%10))
	v.Set("Cway", strconv.Itoa(int(q.Mode)))

	v.Set("Cfp", strconv.Itoa(q.FareType))
	v.Set("Czu", strconv.Itoa(q.Zipangu))
	v.Set("C7", strconv.Itoa(q.Commuter))
	v.Set("C2", strconv.Itoa(q.Airplane))
	v.Set("C3", strconv.Itoa(q.HighwayBus))
	v.Set("C1", strconv.Itoa(q.LimitedExpress))
	v.Set("cartaxy", strconv.Itoa(q.CarTaxi))
	v.Set("bikeshare", strconv.Itoa(q.BikeShare))

	sort := q.Sort
	if sort == "" {
		sort = SortTime
	}
	v.Set("sort", string(sort))

	v.Set("C4", strconv.Itoa(q.SeatType))
	v.Set("C5", strconv.Itoa(q.PreferredTrain))
	v.Set("C6", strconv.Itoa(q.TransferTime))
	v.Set("S", "検索")
	v.Set("Cmap1", "")
	v.Set("rf", "nr")
	v.Set("pg", strconv.Itoa(q.Page))
	v.Set("eok1", StationKind(q.From))
	v.Set("eok2", StationKind(q.To))
	v.Set("Csg", "1")

	return v
}

// StationKind returns "B-" for bus stop names, which carry a full-width
// bracket, and "R-" otherwise.
func StationKind(name string) string {
	if strings.Contains(name, busStopMarker) || strings.Contains(name, busStopMarkerAlt) {
		return busStopKind
	}
	return railwayStationKind
}

// Values encodes the suggestion query.
func (q SuggestQuery) Values() url.Values {
	v := url.Values{}
	v.Set("q", q.Query)
	v.Set("format", "json")
	if q.MaxRailway > 0 {
		v.Set("max_R", strconv.Itoa(q.MaxRailway))
	}
	if q.MaxBus > 0 {
		v.Set("max_B", strconv.Itoa(q.MaxBus))
	}
	if q.MaxSpot > 0 {
		v.Set("max_S", strconv.Itoa(q.MaxSpot))
	}
	if q.Kinds != "" {
		v.Set("kinds", q.Kinds)
	}
	return v
}
