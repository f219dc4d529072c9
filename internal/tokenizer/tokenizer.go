// Package tokenizer counts model tokens in rendered text.
package tokenizer

import (
	"fmt"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Encoding is the BPE used for budget accounting.
const Encoding = "cl100k_base"

// Counter counts tokens.
type Counter interface {
	Count(text string) int
}

// Tiktoken counts cl100k_base tokens. It is read-only after construction
// and safe for concurrent use.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

var offlineLoader sync.Once

// NewTiktoken loads the cl100k_base encoding from the embedded BPE tables.
// No network access is required.
func NewTiktoken() (*Tiktoken, error) {
	offlineLoader.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})

	enc, err := tiktoken.GetEncoding(Encoding)
	if err != nil {
		return nil, fmt.Errorf("loading %s encoding: %w", Encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// RuneCounter counts one token per rune. It overestimates real token counts
// for Latin text and is used when the BPE tables are unavailable.
type RuneCounter struct{}

// Count returns the number of runes in text.
func (RuneCounter) Count(text string) int {
	return utf8.RuneCountInString(text)
}

// CounterFunc adapts a function to Counter.
type CounterFunc func(text string) int

// Count calls f(text).
func (f CounterFunc) Count(text string) int {
	return f(text)
}
