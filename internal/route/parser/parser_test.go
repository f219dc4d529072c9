package parser_test

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norikae/norikae/internal/route"
	"github.com/norikae/norikae/internal/route/parser"
)

func loadFixture(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/results.html")
	require.NoError(t, err)
	return string(b)
}

func fixedNow() time.Time {
	return time.Date(2025, 6, 1, 0, 30, 0, 0, time.FixedZone("JST", 9*60*60))
}

func TestParser_Parse(t *testing.T) {
	p := parser.New(parser.Config{Logger: zerolog.Nop(), Now: fixedNow})

	result, err := p.Parse(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, result.Routes, 3)
	assert.Empty(t, result.Skipped)
	assert.Equal(t, "2025-05-31T15:30:00.000Z", result.SearchTime)

	for i, r := range result.Routes {
		assert.Equal(t, i+1, r.RouteNumber)
	}
}

func TestParser_Parse_FirstRoute(t *testing.T) {
	result, err := parser.Parse(loadFixture(t))
	require.NoError(t, err)
	require.NotEmpty(t, result.Routes)

	r := result.Routes[0]
	assert.Equal(t, "rt1", r.ID)
	assert.Equal(t, []route.Tag{
		{Type: route.TagFast, Label: "早い"},
		{Type: route.TagComfortable, Label: "楽"},
	}, r.Tags)
	assert.Equal(t, route.TimeInfo{Departure: "09:05", Arrival: "09:40"}, r.TimeInfo)
	assert.Equal(t, route.FareInfo{Total: 1234, AdditionalInfo: "220円"}, r.FareInfo)
	assert.Equal(t, 35, r.TotalTime)
	assert.Equal(t, 1, r.Transfers)
	require.NotNil(t, r.TotalDistance)
	assert.InDelta(t, 28.8, *r.TotalDistance, 0.0001)
	assert.Equal(t, &route.CO2Info{Amount: "552g", ReductionRate: "86%", Comparison: "自動車比"}, r.CO2Info)

	require.Len(t, r.RouteNotices, 1)
	assert.Equal(t, "東海道線は工事のためダイヤが変更になります", r.RouteNotices[0].Title)

	require.Len(t, r.Segments, 5)

	start := r.Segments[0]
	require.Equal(t, route.SegmentStation, start.Kind)
	assert.Equal(t, "東京", start.Station.Name)
	assert.Equal(t, route.StationStart, start.Station.Type)
	assert.Equal(t, "3番線", start.Station.Platform)
	require.NotNil(t, start.Station.Weather)
	assert.Equal(t, route.WeatherSunny, start.Station.Weather.Condition)
	assert.Equal(t, "晴れ", start.Station.Weather.Description)
	require.Len(t, start.Station.Services, 3)
	assert.Equal(t, route.ServiceTimetable, start.Station.Services[0].Type)
	assert.Equal(t, "/time/tokyo", start.Station.Services[0].URL)
	assert.Equal(t, route.ServiceMap, start.Station.Services[1].Type)
	assert.Equal(t, route.ServiceExitInfo, start.Station.Services[2].Type)

	train := r.Segments[1]
	require.Equal(t, route.SegmentTransport, train.Kind)
	assert.Equal(t, route.TransportTrain, train.Transport.Type)
	assert.Equal(t, "ＪＲ東海道本線[ＪＲ東日本]（熱海行）", train.Transport.LineName)
	assert.Equal(t, "熱海行", train.Transport.Direction)
	assert.Equal(t, "ＪＲ東日本", train.Transport.Operator)
	assert.Equal(t, route.LegTime{Departure: "09:05", Arrival: "09:30", Duration: 25}, train.Transport.TimeInfo)
	require.NotNil(t, train.Transport.Fare)
	assert.Equal(t, 1014, *train.Transport.Fare)
	assert.Equal(t, "28.8km", train.Transport.Distance)

	transfer := r.Segments[2]
	assert.Equal(t, route.StationTransfer, transfer.Station.Type)
	assert.Equal(t, route.WeatherCloudy, transfer.Station.Weather.Condition)

	walk := r.Segments[3]
	assert.Equal(t, route.TransportWalk, walk.Transport.Type)
	assert.Equal(t, 10, walk.Transport.TimeInfo.Duration)
	assert.Nil(t, walk.Transport.Fare)

	end := r.Segments[4]
	assert.Equal(t, route.StationEnd, end.Station.Type)
	assert.Nil(t, end.Station.Weather)
	assert.Empty(t, end.Station.Platform)
}

func TestParser_Parse_SecondRoute(t *testing.T) {
	result, err := parser.Parse(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, result.Routes, 3)

	r := result.Routes[1]
	assert.Equal(t, route.TimeInfo{Departure: "21:10", Arrival: "1:09"}, r.TimeInfo)
	assert.Equal(t, route.FareInfo{Total: 12340}, r.FareInfo)
	assert.Equal(t, 239, r.TotalTime)
	assert.Equal(t, 2, r.Transfers)
	assert.Nil(t, r.TotalDistance)
	assert.Nil(t, r.CO2Info)
	assert.Empty(t, r.RouteNotices)

	kinds := make([]route.TransportType, 0)
	for _, s := range r.Segments {
		if s.Kind == route.SegmentTransport {
			kinds = append(kinds, s.Transport.Type)
		}
	}
	assert.Equal(t, []route.TransportType{route.TransportSubway, route.TransportBus, route.TransportCar}, kinds)
	assert.Len(t, r.Segments, 7)
	assert.Equal(t, "西武バス", r.Segments[3].Transport.Operator)
	assert.Equal(t, route.WeatherRainy, r.Segments[0].Station.Weather.Condition)
}

func TestParser_Parse_SparseRoute(t *testing.T) {
	result, err := parser.Parse(loadFixture(t))
	require.NoError(t, err)
	require.Len(t, result.Routes, 3)

	r := result.Routes[2]
	assert.Equal(t, "route_3", r.ID)
	assert.Equal(t, []route.Tag{{Type: route.TagCar, Label: "車"}}, r.Tags)
	assert.False(t, r.TimeInfo.HasWindow())
	assert.Equal(t, 120, r.TotalTime)
	assert.Zero(t, r.FareInfo.Total)
	assert.Nil(t, r.CO2Info)
	assert.Empty(t, r.Segments)
}

func TestParser_Parse_EmptyContainer(t *testing.T) {
	result, err := parser.Parse(`<html><body><div id="results" class="js_routeBlocks"></div></body></html>`)
	require.NoError(t, err)
	assert.NotNil(t, result.Routes)
	assert.Empty(t, result.Routes)
	assert.NotEmpty(t, result.SearchTime)
}

func TestParser_Parse_MissingContainer(t *testing.T) {
	docs := []string{
		`<html><body><p>システムメンテナンス中です</p></body></html>`,
		`<html><body><div id="results"><div class="bk_result"></div></div></body></html>`,
		``,
	}

	for _, doc := range docs {
		result, err := parser.Parse(doc)
		require.Error(t, err)
		assert.Nil(t, result)
		assert.ErrorIs(t, err, route.ErrDocumentFormat)

		var formatErr *route.DocumentFormatError
		assert.ErrorAs(t, err, &formatErr)
	}
}

func TestParser_Parse_Deterministic(t *testing.T) {
	p := parser.New(parser.Config{Logger: zerolog.Nop(), Now: fixedNow})
	doc := loadFixture(t)

	first, err := p.Parse(doc)
	require.NoError(t, err)
	second, err := p.Parse(doc)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestParser_Parse_NoWarningsForCleanPage(t *testing.T) {
	var buf bytes.Buffer
	p := parser.New(parser.Config{Logger: zerolog.New(&buf)})

	_, err := p.Parse(loadFixture(t))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}
