package search_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/norikae/norikae/internal/jorudan"
	"github.com/norikae/norikae/internal/search"
	"github.com/norikae/norikae/internal/tokenizer"
)

func TestInterleave_UnevenLists(t *testing.T) {
	resp := &jorudan.SuggestResponse{
		Railway: []jorudan.Place{{Name: "R1"}, {Name: "R2"}, {Name: "R3"}},
		Spots:   []jorudan.Place{{Name: "S1"}},
	}

	names := make([]string, 0)
	for _, p := range search.Interleave(resp) {
		names = append(names, p.Name)
	}

	assert.Equal(t, []string{"R1", "S1", "R2", "R3"}, names)
}

func TestInterleave_Empty(t *testing.T) {
	assert.Empty(t, search.Interleave(&jorudan.SuggestResponse{}))
}

func TestDescribePlace_OnlyName(t *testing.T) {
	assert.Equal(t, "新宿", search.DescribePlace(jorudan.Place{Name: "新宿", PrefName: "東京都"}, true))
}

func TestJoinWithinBudget(t *testing.T) {
	items := []string{"aaa", "bbb", "ccc"}
	counter := tokenizer.RuneCounter{}

	assert.Equal(t, "aaa,bbb,ccc", search.JoinWithinBudget(items, counter, 0))
	assert.Equal(t, "aaa,bbb,ccc", search.JoinWithinBudget(items, counter, 11))
	assert.Equal(t, "aaa,bbb", search.JoinWithinBudget(items, counter, 10))
	assert.Equal(t, "aaa", search.JoinWithinBudget(items, counter, 3))
	assert.Empty(t, search.JoinWithinBudget(items, counter, 2))
}
