package segmenter

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	DefaultMarkerStart = "-CLIPSTART-"
	DefaultMarkerEnd   = "-CLIPEND-"

	// CodeSavedPhrase is spoken right after a fenced block is sent to the
	// clipboard.
	CodeSavedPhrase = "Code saved to the clipboard."
)

type Options struct {
	// MarkerStart and MarkerEnd are matched as literal substrings. An empty
	// marker disables marker detection. Markers must not contain
	// whitespace, a sentence boundary could otherwise cut through them.
	MarkerStart string
	MarkerEnd   string

	// FlushOnError makes SegmentWithErrors flush the buffered text when the
	// upstream fails instead of dropping it.
	FlushOnError bool

	// CloseFenceOnFlush closes a code fence that is still open when the
	// stream ends. By default the flushed block is only prefixed with the
	// opening fence.
	CloseFenceOnFlush bool
}

type Option func(*Options)

func defaultOptions() Options {
	return Options{
		MarkerStart: DefaultMarkerStart,
		MarkerEnd:   DefaultMarkerEnd,
	}
}

var ErrInvalidMarker = errors.New("invalid clipboard marker")

// Validate reports options New would reject.
func (o Options) Validate() error {
	for _, marker := range []string{o.MarkerStart, o.MarkerEnd} {
		if strings.IndexFunc(marker, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: %q contains whitespace", ErrInvalidMarker, marker)
		}
	}
	return nil
}

// WithMarkers sets the clipboard markers. New panics if either contains
// whitespace; check user supplied markers with Options.Validate first.
func WithMarkers(start, end string) Option {
	return func(o *Options) {
		o.MarkerStart = start
		o.MarkerEnd = end
	}
}

func WithFlushOnError(flush bool) Option {
	return func(o *Options) { o.FlushOnError = flush }
}

// WithClosedFenceOnFlush changes the end of stream behaviour for an
// unterminated code fence: the clipboard text is wrapped in both fences
// instead of only the opening one.
func WithClosedFenceOnFlush() Option {
	return func(o *Options) { o.CloseFenceOnFlush = true }
}
