package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/norikae/norikae/internal/markup"
	"github.com/norikae/norikae/internal/route"
)

var (
	legTimePattern  = regexp.MustCompile(`\(?(\d{1,2}:\d{2})\)?-\(?(\d{1,2}:\d{2})\)?`)
	operatorPattern = regexp.MustCompile(`\[(.*?)\]`)
)

// Icon filenames used by the results page for non-rail legs.
var transportIcons = []struct {
	file string
	typ  route.TransportType
}{
	{"nr2.gif", route.TransportSubway},
	{"nr5.gif", route.TransportBus},
	{"nr13.gif", route.TransportCar},
}

var weatherKeywords = []struct {
	keyword   string
	condition route.WeatherCondition
}{
	{"cloudy", route.WeatherCloudy},
	{"rainy", route.WeatherRainy},
	{"snowy", route.WeatherSnowy},
}

var serviceClassKeywords = []struct {
	keyword string
	typ     route.ServiceType
}{
	{"time", route.ServiceTimetable},
	{"rosenzu", route.ServiceRouteMap},
	{"kounai", route.ServiceFloorPlan},
	{"coupon", route.ServiceCoupon},
	{"gourmet", route.ServiceGourmet},
}

const (
	exitKeyword    = "出口"
	boundForMarker = "行"
	openParenFull  = "（"
	closeParenFull = "）"
)

// Segments reads the itinerary table of a route block. Header rows and rows
// without a recoverable name are dropped.
func Segments(block *markup.Selection) []route.Segment {
	segments := make([]route.Segment, 0)

	block.Find(".route table tr").Each(func(_ int, row *markup.Selection) {
		if !row.Find("th").Empty() {
			return
		}

		if row.HasClass("eki") {
			if station := Station(row); station != nil {
				segments = append(segments, route.StationSegment(station))
			}
		}

		if row.HasClass("rosen") {
			if transport := Transport(row); transport != nil {
				segments = append(segments, route.TransportSegment(transport))
			}
		}
	})

	return segments
}

// Station reads a station row. Nil if the row has no station name.
func Station(row *markup.Selection) *route.StationInfo {
	name := row.Find(".nm strong").Text()
	if name == "" {
		return nil
	}

	stationType := route.StationTransfer
	switch {
	case row.HasClass("eki_s"):
		stationType = route.StationStart
	case row.HasClass("eki_e"):
		stationType = route.StationEnd
	}

	return &route.StationInfo{
		Name:     name,
		Type:     stationType,
		Weather:  Weather(row.Find(".tenki")),
		Platform: row.Find(".ph div").Text(),
		Services: Services(row),
	}
}

// Weather reads a weather icon. Nil if the icon has no src.
func Weather(icon *markup.Selection) *route.WeatherInfo {
	src := icon.AttrOr("src", "")
	if src == "" {
		return nil
	}

	return &route.WeatherInfo{
		Condition:   WeatherCondition(src),
		IconURL:     src,
		Description: icon.AttrOr("alt", ""),
	}
}

// WeatherCondition infers the condition from an icon URL, defaulting to sunny.
func WeatherCondition(iconURL string) route.WeatherCondition {
	for _, w := range weatherKeywords {
		if strings.Contains(iconURL, w.keyword) {
			return w.condition
		}
	}
	return route.WeatherSunny
}

// Services reads the station links of a station row.
func Services(row *markup.Selection) []route.StationService {
	services := make([]route.StationService, 0)

	row.Find(".nrk-route-tbl__ekilink a").Each(func(_ int, link *markup.Selection) {
		name := link.Text()
		services = append(services, route.StationService{
			Type: ServiceType(link.AttrOr("class", ""), name),
			Name: name,
			URL:  link.AttrOr("href", ""),
		})
	})

	return services
}

// ServiceType classifies a station link by its class attribute first and
// its text second, defaulting to map.
func ServiceType(class, text string) route.ServiceType {
	for _, s := range serviceClassKeywords {
		if strings.Contains(class, s.keyword) {
			return s.typ
		}
	}
	if strings.Contains(text, exitKeyword) {
		return route.ServiceExitInfo
	}
	return route.ServiceMap
}

// Transport reads a transport row. Nil if the row has no line name.
func Transport(row *markup.Selection) *route.TransportInfo {
	lineName := row.Find(".rn a, .rn div").Text()
	if lineName == "" {
		return nil
	}

	info := &route.TransportInfo{
		Type:      TransportType(row.HasClass("k_walk"), row.Find(".gf img").AttrOr("src", "")),
		LineName:  lineName,
		Direction: Direction(lineName),
		Operator:  Operator(lineName),
		TimeInfo:  ParseLegTime(row.Find(".tm").RawText()),
		Distance:  row.Find(".km").Text(),
	}

	if m := yenPattern.FindStringSubmatch(row.Find(".fr").RawText()); m != nil {
		if fare, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", "")); err == nil {
			info.Fare = &fare
		}
	}

	return info
}

// TransportType infers the mode of a leg. Walking is marked on the row;
// other modes come from the icon filename. Anything unrecognized is
// reported as a train.
func TransportType(walkRow bool, iconSrc string) route.TransportType {
	if walkRow {
		return route.TransportWalk
	}
	for _, icon := range transportIcons {
		if strings.Contains(iconSrc, icon.file) {
			return icon.typ
		}
	}
	return route.TransportTrain
}

// ParseLegTime parses "(20:51)-(20:58) 7分" or "20:51-20:58 7分".
func ParseLegTime(text string) route.LegTime {
	var t route.LegTime
	if m := legTimePattern.FindStringSubmatch(text); m != nil {
		t.Departure, t.Arrival = m[1], m[2]
	}
	if m := minutePattern.FindStringSubmatch(text); m != nil {
		t.Duration = atoi(m[1])
	}
	return t
}

// Operator returns the text inside the first [...] of a line name.
func Operator(lineName string) string {
	if m := operatorPattern.FindStringSubmatch(lineName); m != nil {
		return m[1]
	}
	return ""
}

// Direction returns the destination of a line name such as
// "ＪＲ山手線（東京行）". Empty unless the name carries the bound-for marker.
func Direction(lineName string) string {
	if !strings.Contains(lineName, boundForMarker) {
		return ""
	}
	parts := strings.Split(lineName, openParenFull)
	if len(parts) < 2 {
		return ""
	}
	return strings.Replace(parts[1], closeParenFull, "", 1)
}
