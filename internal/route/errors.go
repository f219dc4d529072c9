package route

import (
	"errors"
	"fmt"
)

// ErrDocumentFormat is matched by every DocumentFormatError.
var ErrDocumentFormat = errors.New("unexpected document format")

// DocumentFormatError reports a document that is not a route search results
// page at all.
type DocumentFormatError struct {
	Reason string
	Err    error
}

func (e *DocumentFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrDocumentFormat, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrDocumentFormat, e.Reason)
}

// Is makes errors.Is(err, ErrDocumentFormat) hold.
func (e *DocumentFormatError) Is(target error) bool {
	return target == ErrDocumentFormat
}

func (e *DocumentFormatError) Unwrap() error {
	return e.Err
}

// RouteParseError describes a single route block that was skipped.
type RouteParseError struct {
	// RouteNumber is the 1-based position of the skipped block.
	RouteNumber int

	// BlockID is the id attribute of the block, if any.
	BlockID string

	Reason string
}

func (e *RouteParseError) Error() string {
	if e.BlockID != "" {
		return fmt.Sprintf("route %d (%s) skipped: %s", e.RouteNumber, e.BlockID, e.Reason)
	}
	return fmt.Sprintf("route %d skipped: %s", e.RouteNumber, e.Reason)
}
