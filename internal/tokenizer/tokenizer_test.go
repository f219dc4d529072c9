package tokenizer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norikae/norikae/internal/tokenizer"
)

func TestTiktoken_Count(t *testing.T) {
	counter, err := tokenizer.NewTiktoken()
	require.NoError(t, err)

	assert.Equal(t, 0, counter.Count(""))
	assert.Equal(t, 2, counter.Count("hello world"))

	short := counter.Count("🚃 **東京** から **横浜** への経路検索結果")
	long := counter.Count(strings.Repeat("🚃 **東京** から **横浜** への経路検索結果\n", 10))
	assert.Positive(t, short)
	assert.Greater(t, long, short)
}

func TestTiktoken_Reusable(t *testing.T) {
	first, err := tokenizer.NewTiktoken()
	require.NoError(t, err)
	second, err := tokenizer.NewTiktoken()
	require.NoError(t, err)

	text := "📋 **3件の経路が見つかりました**"
	assert.Equal(t, first.Count(text), second.Count(text))
}

func TestRuneCounter_Count(t *testing.T) {
	var counter tokenizer.Counter = tokenizer.RuneCounter{}

	assert.Equal(t, 0, counter.Count(""))
	assert.Equal(t, 5, counter.Count("hello"))
	assert.Equal(t, 2, counter.Count("東京"))
}

func TestCounterFunc(t *testing.T) {
	counter := tokenizer.CounterFunc(func(text string) int { return len(strings.Fields(text)) })

	assert.Equal(t, 3, counter.Count("a b c"))
}
