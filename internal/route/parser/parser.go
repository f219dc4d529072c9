// Package parser extracts route search results from the Jorudan results page.
package parser

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/norikae/norikae/internal/markup"
	"github.com/norikae/norikae/internal/route"
)

const (
	resultsContainer = "#results.js_routeBlocks"
	routeBlock       = ".bk_result"

	// SearchTimeLayout is the layout of SearchResult.SearchTime.
	SearchTimeLayout = "2006-01-02T15:04:05.000Z"
)

// Result is a parsed results page with the blocks that had to be skipped.
type Result struct {
	route.SearchResult

	// Skipped lists the route blocks that could not be assembled.
	Skipped []*route.RouteParseError
}

// Config holds configuration for a Parser.
type Config struct {
	// Logger receives a warning for every skipped route block.
	Logger zerolog.Logger

	// Now stamps SearchTime (default: time.Now).
	Now func() time.Time
}

// Parser turns results pages into route models. It holds no per-call state
// and is safe for concurrent use.
type Parser struct {
	logger zerolog.Logger
	now    func() time.Time
	steps  []step
}

// New creates a Parser.
func New(cfg Config) *Parser {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Parser{
		logger: cfg.Logger,
		now:    now,
		steps:  defaultSteps,
	}
}

// Parse extracts a results page with a silent logger.
func Parse(doc string) (*Result, error) {
	return New(Config{Logger: zerolog.Nop()}).Parse(doc)
}

// Parse extracts every route block of a results page, in document order.
// It fails with a *route.DocumentFormatError when the page has no results
// container; a container without route blocks yields an empty result.
func (p *Parser) Parse(doc string) (*Result, error) {
	root, err := markup.Parse(doc)
	if err != nil {
		return nil, err
	}

	results := root.Find(resultsContainer)
	if results.Empty() {
		return nil, &route.DocumentFormatError{
			Reason: "no route search results container found; the page layout may have changed",
		}
	}

	outcomes := make([]Outcome, 0)
	results.Find(routeBlock).Each(func(i int, block *markup.Selection) {
		outcomes = append(outcomes, assemble(block, i+1, p.steps))
	})

	result := &Result{
		SearchResult: route.SearchResult{
			Routes: lo.FilterMap(outcomes, func(o Outcome, _ int) (route.Route, bool) {
				if !o.OK() {
					return route.Route{}, false
				}
				return *o.Route, true
			}),
			SearchTime: p.now().UTC().Format(SearchTimeLayout),
		},
		Skipped: lo.FilterMap(outcomes, func(o Outcome, _ int) (*route.RouteParseError, bool) {
			return o.Skipped, !o.OK()
		}),
	}

	for _, s := range result.Skipped {
		p.logger.Warn().
			Int("route_number", s.RouteNumber).
			Str("block_id", s.BlockID).
			Str("reason", s.Reason).
			Msg("skipping unparseable route block")
	}

	return result, nil
}
