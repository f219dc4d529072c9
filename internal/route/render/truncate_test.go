package render_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norikae/norikae/internal/route"
	"github.com/norikae/norikae/internal/route/render"
	"github.com/norikae/norikae/internal/tokenizer"
)

// headingCounter charges 100 tokens per route heading.
var headingCounter = tokenizer.CounterFunc(func(text string) int {
	return strings.Count(text, "## 🛤️") * 100
})

func routes(n int) *route.SearchResult {
	result := &route.SearchResult{SearchTime: "2025-06-01T00:00:00.000Z"}
	for i := 1; i <= n; i++ {
		r := fullRoute()
		r.ID = fmt.Sprintf("route_%d", i)
		r.RouteNumber = i
		result.Routes = append(result.Routes, r)
	}
	return result
}

func renderFunc(result *route.SearchResult) string {
	return render.Render(result, params)
}

func TestTruncator_NoBudget(t *testing.T) {
	result := routes(4)
	tr := render.Truncator{Counter: headingCounter}

	assert.Equal(t, renderFunc(result), tr.Truncate(result, renderFunc, 0))
	assert.Equal(t, renderFunc(result), tr.Truncate(result, renderFunc, -1))
}

func TestTruncator_Fits(t *testing.T) {
	result := routes(4)
	tr := render.Truncator{Counter: headingCounter}

	assert.Equal(t, renderFunc(result), tr.Truncate(result, renderFunc, 400))
}

func TestTruncator_ScalesRouteCount(t *testing.T) {
	result := routes(4)
	tr := render.Truncator{Counter: headingCounter}

	out := tr.Truncate(result, renderFunc, 250)

	assert.Contains(t, out, "📋 **2件の経路が見つかりました**")
	assert.Contains(t, out, "## 🛤️ 経路2:")
	assert.NotContains(t, out, "## 🛤️ 経路3:")
	assert.Len(t, result.Routes, 4)
}

func TestTruncator_KeepsAtLeastOneRoute(t *testing.T) {
	result := routes(4)
	tr := render.Truncator{Counter: headingCounter}

	out := tr.Truncate(result, renderFunc, 1)

	assert.Contains(t, out, "📋 **1件の経路が見つかりました**")
	assert.Contains(t, out, "## 🛤️ 経路1:")
	assert.NotContains(t, out, "## 🛤️ 経路2:")
}

func TestTruncator_SingleShot(t *testing.T) {
	result := routes(4)
	calls := 0
	counting := func(r *route.SearchResult) string {
		calls++
		return renderFunc(r)
	}
	tr := render.Truncator{Counter: tokenizer.RuneCounter{}}

	full := renderFunc(result)
	out := tr.Truncate(result, counting, 50)

	assert.Equal(t, 2, calls)
	assert.Less(t, len(out), len(full))
}

func TestTruncator_MonotonicInBudget(t *testing.T) {
	result := routes(6)
	tr := render.Truncator{Counter: tokenizer.RuneCounter{}}
	full := tokenizer.RuneCounter{}.Count(renderFunc(result))

	prev := 0
	for budget := 1; budget <= full+10; budget += full / 12 {
		n := tokenizer.RuneCounter{}.Count(tr.Truncate(result, renderFunc, budget))
		assert.GreaterOrEqual(t, n, prev, "budget %d", budget)
		prev = n
	}
}
