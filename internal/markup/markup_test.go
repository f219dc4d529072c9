package markup_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norikae/norikae/internal/markup"
)

const sample = `<html><body>
<div id="a" class="box first"><p>  one  </p><a href="/x" class="link">x</a></div>
<div id="b" class="box"><p>two</p></div>
</body></html>`

func TestParse_FindAndText(t *testing.T) {
	doc, err := markup.Parse(sample)
	require.NoError(t, err)

	boxes := doc.Find(".box")
	assert.Equal(t, 2, boxes.Len())
	assert.Equal(t, "one", boxes.First().Find("p").Text())
	assert.Equal(t, "  one  ", boxes.First().Find("p").RawText())
}

func TestSelection_SubtreeIsolation(t *testing.T) {
	doc := markup.MustParse(sample)

	var texts []string
	doc.Find(".box").Each(func(_ int, box *markup.Selection) {
		// Each box only sees its own paragraph.
		texts = append(texts, box.Find("p").Text())
		assert.Equal(t, 1, box.Find("p").Len())
	})

	assert.Equal(t, []string{"one", "two"}, texts)
}

func TestSelection_AttrAndClass(t *testing.T) {
	doc := markup.MustParse(sample)
	first := doc.Find("#a")

	id, ok := first.Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "a", id)

	_, ok = first.Attr("title")
	assert.False(t, ok)
	assert.Equal(t, "fallback", first.AttrOr("title", "fallback"))

	assert.True(t, first.HasClass("first"))
	assert.False(t, doc.Find("#b").HasClass("first"))
	assert.Equal(t, "/x", first.Find("a.link").AttrOr("href", ""))
}

func TestSelection_Filter(t *testing.T) {
	doc := markup.MustParse(sample)

	second := doc.Find(".box").Filter(func(el *markup.Selection) bool {
		return el.Find("p").Text() == "two"
	})

	require.Equal(t, 1, second.Len())
	assert.Equal(t, "b", second.AttrOr("id", ""))
}

func TestSelection_EmptyAndInvalidSelector(t *testing.T) {
	doc := markup.MustParse(sample)

	assert.True(t, doc.Find(".missing").Empty())
	assert.Equal(t, "", doc.Find(".missing").Text())
	assert.True(t, doc.Find("[[[").Empty())
}
