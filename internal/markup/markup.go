// Package markup provides read-only, selector-based access to parsed HTML.
//
// Every Selection is an independent view of a subtree: queries made through
// it never reach outside the nodes it holds, so extractors can be written as
// pure functions of a fragment.
package markup

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/norikae/norikae/internal/route"
)

// Selection is an ordered set of elements from a parsed document.
type Selection struct {
	sel *goquery.Selection
}

// Parse parses raw HTML into a Selection rooted at the document node.
// It only fails when the input cannot be read as markup at all.
func Parse(doc string) (*Selection, error) {
	root, err := html.Parse(strings.NewReader(doc))
	if err != nil {
		return nil, &route.DocumentFormatError{Reason: "parsing markup", Err: err}
	}
	return &Selection{sel: goquery.NewDocumentFromNode(root).Selection}, nil
}

// MustParse is like Parse but panics on error. Intended for tests.
func MustParse(doc string) *Selection {
	s, err := Parse(doc)
	if err != nil {
		panic(fmt.Sprintf("markup: %v", err))
	}
	return s
}

// Find returns the descendants matching the CSS selector, in document order.
// An invalid selector matches nothing.
func (s *Selection) Find(selector string) *Selection {
	return &Selection{sel: s.sel.Find(selector)}
}

// Each calls fn for every element, in document order.
func (s *Selection) Each(fn func(i int, el *Selection)) {
	s.sel.Each(func(i int, el *goquery.Selection) {
		fn(i, &Selection{sel: el})
	})
}

// Filter keeps the elements for which keep returns true.
func (s *Selection) Filter(keep func(el *Selection) bool) *Selection {
	return &Selection{sel: s.sel.FilterFunction(func(_ int, el *goquery.Selection) bool {
		return keep(&Selection{sel: el})
	})}
}

// First returns the first element, or an empty selection.
func (s *Selection) First() *Selection {
	return &Selection{sel: s.sel.First()}
}

// Len returns the number of elements.
func (s *Selection) Len() int {
	return s.sel.Length()
}

// Empty reports whether the selection holds no elements.
func (s *Selection) Empty() bool {
	return s.sel.Length() == 0
}

// RawText returns the combined text of all elements and their descendants.
func (s *Selection) RawText() string {
	return s.sel.Text()
}

// Text returns RawText with surrounding whitespace removed.
func (s *Selection) Text() string {
	return strings.TrimSpace(s.sel.Text())
}

// Attr returns the attribute of the first element.
func (s *Selection) Attr(name string) (string, bool) {
	return s.sel.Attr(name)
}

// AttrOr returns the attribute of the first element, or def if absent.
func (s *Selection) AttrOr(name, def string) string {
	return s.sel.AttrOr(name, def)
}

// HasClass reports whether any element carries the class.
func (s *Selection) HasClass(class string) bool {
	return s.sel.HasClass(class)
}
