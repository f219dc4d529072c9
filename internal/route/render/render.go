// Package render formats route search results as chat-ready text and fits
// them to a token budget.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/norikae/norikae/internal/route"
)

// Params describes the query a result answers.
type Params struct {
	SourceURL     string
	Origin        string
	Destination   string
	QueryDatetime string
}

var (
	tagLabels = map[route.TagType]string{
		route.TagFast:        "⚡早い",
		route.TagComfortable: "😌楽",
		route.TagCheap:       "💰安い",
		route.TagCar:         "🚗車",
	}

	weatherIcons = map[route.WeatherCondition]string{
		route.WeatherSunny:  "☀️",
		route.WeatherCloudy: "☁️",
		route.WeatherRainy:  "🌧️",
		route.WeatherSnowy:  "❄️",
	}

	transportIcons = map[route.TransportType]string{
		route.TransportTrain:  "🚃",
		route.TransportSubway: "🚇",
		route.TransportBus:    "🚌",
		route.TransportCar:    "🚗",
		route.TransportTaxi:   "🚕",
		route.TransportWalk:   "🚶",
	}

	stationLabels = map[route.StationType]string{
		route.StationStart:    "🚩 **出発**",
		route.StationTransfer: "🔄 **乗換**",
		route.StationEnd:      "🏁 **到着**",
	}
)

const (
	defaultWeatherIcon   = "🌤️"
	defaultTransportIcon = "🚃"
)

// yen groups thousands the way Japanese fares are printed.
var yen = message.NewPrinter(language.Japanese)

// Render formats result as text. The output depends only on its inputs.
func Render(result *route.SearchResult, p Params) string {
	lines := []string{
		fmt.Sprintf("🚃 **%s** から **%s** への経路検索結果", p.Origin, p.Destination),
		"📅 検索日時: " + p.QueryDatetime,
		"🔗 検索URL: " + p.SourceURL,
		"⏰ 検索実行時刻: " + result.SearchTime,
		"",
	}

	if len(result.Routes) == 0 {
		lines = append(lines, "❌ 該当する経路が見つかりませんでした。")
		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("📋 **%d件の経路が見つかりました**", len(result.Routes)), "")

	for i := range result.Routes {
		lines = appendRoute(lines, &result.Routes[i])
	}

	return strings.Join(lines, "\n")
}

func appendRoute(lines []string, r *route.Route) []string {
	lines = append(lines, heading(r))

	if info := basicInfo(r); len(info) > 0 {
		lines = append(lines, strings.Join(info, " | "))
	}

	if len(r.Tags) > 0 {
		labels := lo.Map(r.Tags, func(t route.Tag, _ int) string {
			if label, ok := tagLabels[t.Type]; ok {
				return label
			}
			return t.Label
		})
		lines = append(lines, "🏷️ "+strings.Join(labels, " "))
	}

	if r.CO2Info != nil {
		line := "🌱 CO2排出量: " + r.CO2Info.Amount
		if r.CO2Info.ReductionRate != "" {
			line += fmt.Sprintf(" (%s%s削減)", r.CO2Info.Comparison, r.CO2Info.ReductionRate)
		}
		lines = append(lines, line)
	}

	lines = append(lines, "")

	if len(r.Segments) > 0 {
		lines = append(lines, "### 📍 経路詳細")
		for _, s := range r.Segments {
			switch {
			case s.Kind == route.SegmentStation && s.Station != nil:
				lines = append(lines, stationLine(s.Station))
			case s.Kind == route.SegmentTransport && s.Transport != nil:
				lines = append(lines, "  "+transportLine(s.Transport))
			}
		}
	}

	if len(r.RouteNotices) > 0 {
		lines = append(lines, "", "### ⚠️ 注意事項")
		for _, n := range r.RouteNotices {
			line := "- " + n.Title
			if n.Description != "" && n.Description != n.Title {
				line += ": " + n.Description
			}
			lines = append(lines, line)
		}
	}

	return append(lines, "", "---", "")
}

// heading omits the time window unless both ends are known.
func heading(r *route.Route) string {
	if !r.TimeInfo.HasWindow() {
		return fmt.Sprintf("## 🛤️ 経路%d", r.RouteNumber)
	}
	return fmt.Sprintf("## 🛤️ 経路%d: %s → %s", r.RouteNumber, r.TimeInfo.Departure, r.TimeInfo.Arrival)
}

func basicInfo(r *route.Route) []string {
	info := make([]string, 0, 4)

	if r.TotalTime > 0 {
		info = append(info, "⏱️ 所要時間: "+Duration(r.TotalTime))
	}

	info = append(info, fmt.Sprintf("🔄 乗換: %d回", r.Transfers))

	if r.FareInfo.Total > 0 {
		info = append(info, "💰 運賃: "+yen.Sprintf("%d", r.FareInfo.Total)+"円")
	}

	if r.TotalDistance != nil && *r.TotalDistance > 0 {
		info = append(info, "📏 距離: "+strconv.FormatFloat(*r.TotalDistance, 'f', -1, 64)+"km")
	}

	return info
}

// Duration formats minutes as "{h}時間{m}分", dropping the hours when zero.
func Duration(minutes int) string {
	if h := minutes / 60; h > 0 {
		return fmt.Sprintf("%d時間%d分", h, minutes%60)
	}
	return fmt.Sprintf("%d分", minutes)
}

func stationLine(s *route.StationInfo) string {
	label, ok := stationLabels[s.Type]
	if !ok {
		label = "📍"
	}

	var b strings.Builder
	b.WriteString(label)
	if ok {
		b.WriteString(":")
	}
	b.WriteString(" " + s.Name)

	if s.Platform != "" {
		b.WriteString(" (" + s.Platform + ")")
	}
	if s.Weather != nil {
		b.WriteString(" " + iconOr(weatherIcons, s.Weather.Condition, defaultWeatherIcon))
	}

	return b.String()
}

func transportLine(t *route.TransportInfo) string {
	var b strings.Builder
	b.WriteString(iconOr(transportIcons, t.Type, defaultTransportIcon))
	b.WriteString(" " + t.LineName)

	timing := make([]string, 0, 2)
	if t.TimeInfo.Departure != "" && t.TimeInfo.Arrival != "" {
		timing = append(timing, t.TimeInfo.Departure+"-"+t.TimeInfo.Arrival)
	}
	if t.TimeInfo.Duration > 0 {
		timing = append(timing, strconv.Itoa(t.TimeInfo.Duration)+"分")
	}
	if len(timing) > 0 {
		b.WriteString(" (" + strings.Join(timing, ", ") + ")")
	}

	if t.Fare != nil && *t.Fare > 0 {
		fmt.Fprintf(&b, " 💰%d円", *t.Fare)
	}
	if t.Distance != "" {
		b.WriteString(" 📏" + t.Distance)
	}

	return b.String()
}

func iconOr[K comparable](icons map[K]string, key K, fallback string) string {
	if icon, ok := icons[key]; ok {
		return icon
	}
	return fallback
}
