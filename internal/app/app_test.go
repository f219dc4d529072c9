package app_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norikae/norikae/internal/app"
	"github.com/norikae/norikae/internal/config"
	"github.com/norikae/norikae/internal/jorudan"
	"github.com/norikae/norikae/internal/search"
	"github.com/norikae/norikae/internal/tokenizer"
)

func TestBuild_RegistersProvider(t *testing.T) {
	cfg := config.Default()
	cfg.Search.Tokenizer = "rune"

	c := app.Build(cfg, app.Options{Logger: zerolog.Nop()})

	require.NotNil(t, c.Search)
	assert.Equal(t, []string{jorudan.ProviderName}, c.Registry.Names())
	assert.IsType(t, tokenizer.RuneCounter{}, c.Counter)
}

func TestBuild_UsesConfiguredUpstream(t *testing.T) {
	var userAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.UserAgent()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"R":[{"poiName":"東京","poiYomi":"とうきょう","nodeKind":"R"}],"B":[],"S":[]}`))
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Search.Tokenizer = "rune"
	cfg.Jorudan.SuggestURL = server.URL
	cfg.Jorudan.UserAgent = "norikae-test"
	cfg.Jorudan.Timeout = 2 * time.Second

	c := app.Build(cfg, app.Options{Logger: zerolog.Nop()})

	text, err := c.Search.FindPlaces(context.Background(), search.PlaceQuery{Query: "東京", OnlyName: true})
	require.NoError(t, err)
	assert.Equal(t, "東京", text)
	assert.Equal(t, "norikae-test", userAgent)

	health, ok := c.Registry.Health(jorudan.ProviderName)
	require.True(t, ok)
	assert.NotNil(t, health.LastSuccessAt)
}

func TestNewCounter(t *testing.T) {
	assert.IsType(t, tokenizer.RuneCounter{}, app.NewCounter("rune", zerolog.Nop()))

	counter := app.NewCounter("tiktoken", zerolog.Nop())
	assert.Positive(t, counter.Count("乗換案内"))
}
