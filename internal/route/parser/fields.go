package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/norikae/norikae/internal/markup"
	"github.com/norikae/norikae/internal/route"
)

// Each field keeps its observed format variants as an ordered list of
// patterns; the first match wins.
var (
	timeWindowPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\((\d{1,2}:\d{2})\)発.*\((\d{1,2}:\d{2})\)着`),
		regexp.MustCompile(`(\d{1,2}:\d{2})発.*(\d{1,2}:\d{2})着`),
	}

	yenPattern = regexp.MustCompile(`([\d,]+)円`)

	hourMinutePattern = regexp.MustCompile(`(\d+)時間(\d+)分`)
	minutePattern     = regexp.MustCompile(`(\d+)分`)
	hourPattern       = regexp.MustCompile(`(\d+)時間`)

	transferPattern = regexp.MustCompile(`(\d+)回`)
	distancePattern = regexp.MustCompile(`(\d+\.?\d*)km`)

	co2AmountPattern    = regexp.MustCompile(`(\d+\.?\d*[a-zA-Z]+)`)
	co2ReductionPattern = regexp.MustCompile(`(\d+\.?\d*%)\s*削減`)
)

const (
	supplementalFareMark = "＋"
	distanceLabel        = "距離"
	co2ComparisonLabel   = "自動車比"
)

// Tags reads the evaluation badges of a route block.
// Unrecognized badges are ignored.
func Tags(block *markup.Selection) []route.Tag {
	tags := make([]route.Tag, 0)

	block.Find(".hyouka").Each(func(_ int, el *markup.Selection) {
		title := el.AttrOr("title", "")
		text := el.Text()

		switch {
		case title == "早い" || text == "早":
			tags = append(tags, route.Tag{Type: route.TagFast, Label: "早い"})
		case title == "楽" || text == "楽":
			tags = append(tags, route.Tag{Type: route.TagComfortable, Label: "楽"})
		case el.HasClass("hyouka_car"):
			tags = append(tags, route.Tag{Type: route.TagCar, Label: "車"})
		}
	})

	return tags
}

// TimeWindow reads the departure and arrival times of a route block.
func TimeWindow(block *markup.Selection) route.TimeInfo {
	dep, arr := ParseTimeWindow(block.Find(".data_tm").RawText())
	return route.TimeInfo{Departure: dep, Arrival: arr}
}

// ParseTimeWindow extracts "H:MM" departure/arrival from text such as
// "(09:05)発→(09:40)着" or "09:05発→09:40着". Both are empty if neither
// form matches.
func ParseTimeWindow(text string) (departure, arrival string) {
	for _, p := range timeWindowPatterns {
		if m := p.FindStringSubmatch(text); m != nil {
			return m[1], m[2]
		}
	}
	return "", ""
}

// Fare reads the total fare of a route block. The decorated total cell is
// preferred; the generic total cell is the fallback.
func Fare(block *markup.Selection) route.FareInfo {
	decorated := block.Find(".data_line_1 .data_total dd b")
	if decorated.Empty() {
		return ParseFare(block.Find(".data_total dd").RawText())
	}

	fare := ParseFare(decorated.RawText())
	fare.AdditionalInfo = supplementalFare(block.Find(".data_line_1 .data_total dd").RawText())
	return fare
}

// ParseFare parses text such as "1,234円＋220円".
func ParseFare(text string) route.FareInfo {
	return route.FareInfo{
		Total:          parseYen(text),
		AdditionalInfo: supplementalFare(text),
	}
}

func parseYen(text string) int {
	m := yenPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// supplementalFare returns the note between the first and second "＋".
func supplementalFare(text string) string {
	parts := strings.Split(text, supplementalFareMark)
	if len(parts) < 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// TotalTime reads the overall duration of a route block in minutes.
func TotalTime(block *markup.Selection) int {
	return ParseDuration(block.Find(".data_total-time dd").RawText())
}

// ParseDuration parses "3時間59分", "22分" or "2時間", in that order.
func ParseDuration(text string) int {
	if m := hourMinutePattern.FindStringSubmatch(text); m != nil {
		return atoi(m[1])*60 + atoi(m[2])
	}
	if m := minutePattern.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	if m := hourPattern.FindStringSubmatch(text); m != nil {
		return atoi(m[1]) * 60
	}
	return 0
}

// Transfers reads the number of changes of a route block.
func Transfers(block *markup.Selection) int {
	return ParseTransfers(block.Find(".data_norikae-num dd").RawText())
}

// ParseTransfers parses "<n>回".
func ParseTransfers(text string) int {
	if m := transferPattern.FindStringSubmatch(text); m != nil {
		return atoi(m[1])
	}
	return 0
}

// Distance reads the total distance (km) from the definition pair labelled
// "距離". Nil when absent.
func Distance(block *markup.Selection) *float64 {
	dd := block.Find("dl").Filter(func(dl *markup.Selection) bool {
		return dl.Find("dt").Text() == distanceLabel
	}).Find("dd")

	return ParseDistance(dd.RawText())
}

// ParseDistance parses "<n(.n)>km".
func ParseDistance(text string) *float64 {
	m := distancePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	km, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil
	}
	return &km
}

// CO2 reads the emission estimate of a route block.
func CO2(block *markup.Selection) *route.CO2Info {
	return ParseCO2(block.Find(".data_norikae-eco dd").RawText())
}

// ParseCO2 parses text such as "380g（自動車比 85%削減）". It returns nil when
// no amount token is present.
func ParseCO2(text string) *route.CO2Info {
	if text == "" {
		return nil
	}

	amount := co2AmountPattern.FindStringSubmatch(text)
	if amount == nil {
		return nil
	}

	info := &route.CO2Info{Amount: amount[1]}
	if m := co2ReductionPattern.FindStringSubmatch(text); m != nil {
		info.ReductionRate = m[1]
	}
	if strings.Contains(text, co2ComparisonLabel) {
		info.Comparison = co2ComparisonLabel
	}
	return info
}

// Notices reads the advisories of a route block.
func Notices(block *markup.Selection) []route.Notice {
	notices := make([]route.Notice, 0)

	block.Find(".nrb_unk tr").Each(func(_ int, row *markup.Selection) {
		title := row.Find("td").Text()
		if title == "" {
			return
		}
		notices = append(notices, route.Notice{
			Type:        route.NoticeRouteChange,
			Title:       title,
			Description: title,
		})
	})

	return notices
}

// atoi is only called on \d+ captures.
func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
