package render

import (
	"github.com/norikae/norikae/internal/route"
	"github.com/norikae/norikae/internal/tokenizer"
)

// Func renders a search result.
type Func func(result *route.SearchResult) string

// Truncator fits rendered output into a token budget by dropping trailing
// routes.
type Truncator struct {
	Counter tokenizer.Counter
}

// Truncate renders result and, if the output exceeds maxTokens, keeps the
// first n routes, where n scales the route count by the ratio of budget to
// actual tokens (at least one), and renders once more. The second render is
// not re-measured and may still exceed the budget when leading routes are
// denser than average. maxTokens <= 0 disables the budget.
func (t Truncator) Truncate(result *route.SearchResult, render Func, maxTokens int) string {
	full := render(result)
	if maxTokens <= 0 {
		return full
	}

	tokens := t.Counter.Count(full)
	if tokens <= maxTokens {
		return full
	}

	keep := max(1, len(result.Routes)*maxTokens/tokens)
	if keep >= len(result.Routes) {
		return full
	}

	return render(result.WithRoutes(result.Routes[:keep]))
}
