package parser

import (
	"fmt"

	"github.com/norikae/norikae/internal/markup"
	"github.com/norikae/norikae/internal/route"
)

// Outcome is the result of assembling one route block: either Route or
// Skipped is set.
type Outcome struct {
	Route   *route.Route
	Skipped *route.RouteParseError
}

// OK reports whether the block produced a route.
func (o Outcome) OK() bool {
	return o.Route != nil
}

// step fills part of a route from its block.
type step func(block *markup.Selection, r *route.Route) error

var defaultSteps = []step{
	func(b *markup.Selection, r *route.Route) error { r.Tags = Tags(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.TimeInfo = TimeWindow(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.FareInfo = Fare(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.TotalTime = TotalTime(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.Transfers = Transfers(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.TotalDistance = Distance(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.CO2Info = CO2(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.Segments = Segments(b); return nil },
	func(b *markup.Selection, r *route.Route) error { r.RouteNotices = Notices(b); return nil },
}

// assemble builds the route at 1-based position number. A failing step or a
// panic inside any extractor skips only this block.
func assemble(block *markup.Selection, number int, steps []step) (out Outcome) {
	id := block.AttrOr("id", "")

	skip := func(reason string) Outcome {
		return Outcome{Skipped: &route.RouteParseError{
			RouteNumber: number,
			BlockID:     id,
			Reason:      reason,
		}}
	}

	defer func() {
		if p := recover(); p != nil {
			out = skip(fmt.Sprint(p))
		}
	}()

	r := &route.Route{ID: id, RouteNumber: number}
	if r.ID == "" {
		r.ID = fmt.Sprintf("route_%d", number)
	}

	for _, s := range steps {
		if err := s(block, r); err != nil {
			return skip(err.Error())
		}
	}

	return Outcome{Route: r}
}
