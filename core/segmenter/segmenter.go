package segmenter

import (
	"iter"
	"strings"
)

// Segmenter holds the state of a single streamed reply. It is not safe for
// concurrent use and must not be reused for another stream.
type Segmenter struct {
	options Options

	buffer       string
	fullResponse strings.Builder
	inMarker     bool
	inBackticks  bool
	flushed      bool

	// scanned is the first cut position in buffer not yet ruled out as a
	// sentence boundary, searched the length of buffer already searched for
	// the delimiter of the current state.
	scanned  int
	searched int
}

// New panics if the options are invalid, see Options.Validate.
func New(opts ...Option) *Segmenter {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if err := options.Validate(); err != nil {
		panic(err)
	}
	return &Segmenter{options: options}
}

// Segment lazily turns a stream of text chunks into segment events. The
// segmenter is driven only while the returned sequence is being pulled.
func Segment(chunks iter.Seq[string], opts ...Option) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		s := New(opts...)
		for chunk := range chunks {
			if !s.Feed(chunk, yield) {
				return
			}
		}
		s.Flush(yield)
	}
}

// SegmentWithErrors is Segment for upstreams that can fail. The first
// upstream error ends the stream: the buffered text is dropped, or flushed
// before the error is yielded if FlushOnError is set.
func SegmentWithErrors(chunks iter.Seq2[string, error], opts ...Option) iter.Seq2[Event, error] {
	return func(yield func(Event, error) bool) {
		s := New(opts...)
		emit := func(event Event) bool { return yield(event, nil) }
		for chunk, err := range chunks {
			if err != nil {
				if s.options.FlushOnError && !s.Flush(emit) {
					return
				}
				yield(Event{}, err)
				return
			}
			if !s.Feed(chunk, emit) {
				return
			}
		}
		s.Flush(emit)
	}
}

// Feed consumes one chunk and emits every event it resolves, in input
// order. It returns false as soon as yield does.
func (s *Segmenter) Feed(chunk string, yield func(Event) bool) bool {
	s.buffer += chunk
	s.fullResponse.WriteString(chunk)

	for {
		progressed, ok := s.step(yield)
		if !ok {
			return false
		}
		if !progressed {
			return true
		}
	}
}

// Flush emits whatever is left in the buffer followed by the full response.
// Only the first call emits anything.
func (s *Segmenter) Flush(yield func(Event) bool) bool {
	if s.flushed {
		return true
	}
	s.flushed = true

	if rest := strings.TrimSpace(s.buffer); rest != "" {
		s.buffer = ""
		event := Event{Kind: KindSentence, Text: rest}
		switch {
		case s.inBackticks:
			// NOTE: The fence is reopened but not closed unless
			// CloseFenceOnFlush is set.
			event = Event{Kind: KindClipboardText, Text: fence + rest}
			if s.options.CloseFenceOnFlush {
				event.Text += fence
			}
		case s.inMarker:
			event.Kind = KindClipboardText
		}
		if !yield(event) {
			return false
		}
	}

	if full := strings.TrimSpace(s.fullResponse.String()); full != "" {
		return yield(Event{Kind: KindFullResponse, Text: full})
	}
	return true
}

// FullResponse returns every chunk fed so far, untouched.
func (s *Segmenter) FullResponse() string {
	return s.fullResponse.String()
}

// step resolves at most one delimiter, together with the sentences that
// precede it.
func (s *Segmenter) step(yield func(Event) bool) (progressed bool, ok bool) {
	switch {
	case s.inMarker:
		section, found := s.cutAt(s.options.MarkerEnd)
		if !found {
			return false, true
		}
		s.inMarker = false
		// Blank marker spans are still emitted.
		return true, yield(Event{Kind: KindClipboardText, Text: strings.TrimSpace(section)})

	case s.inBackticks:
		section, found := s.cutAt(fence)
		if !found {
			return false, true
		}
		s.inBackticks = false
		if !yield(Event{Kind: KindClipboardText, Text: fence + strings.TrimSpace(section) + fence}) {
			return true, false
		}
		return true, yield(Event{Kind: KindSentence, Text: CodeSavedPhrase})
	}

	start, delimiter := s.nextOpening()
	limit := len(s.buffer)
	if start >= 0 {
		limit = start
	}

	removed, ok := s.emitSentences(limit, yield)
	if !ok || start < 0 {
		return false, ok
	}

	start -= removed
	pre := s.buffer[:start]
	s.dropPrefix(start + len(delimiter))
	if delimiter == fence {
		s.inBackticks = true
	} else {
		s.inMarker = true
	}
	return true, s.emitText(KindSentence, pre, yield)
}

// nextOpening finds the opening delimiter that completes first in the
// buffer. Markers win ties with fences.
func (s *Segmenter) nextOpening() (int, string) {
	start, delimiter := -1, ""
	if s.markersEnabled() {
		if i := indexFrom(s.buffer, s.options.MarkerStart, s.searchFrom(s.options.MarkerStart)); i >= 0 {
			start, delimiter = i, s.options.MarkerStart
		}
	}
	if i := indexFrom(s.buffer, fence, s.searchFrom(fence)); i >= 0 {
		if start < 0 || i+len(fence) < start+len(delimiter) {
			start, delimiter = i, fence
		}
	}

	if start < 0 {
		s.searched = len(s.buffer)
	}
	return start, delimiter
}

// cutAt splits the buffer around the first occurrence of delimiter and
// returns the text before it.
func (s *Segmenter) cutAt(delimiter string) (string, bool) {
	i := indexFrom(s.buffer, delimiter, s.searchFrom(delimiter))
	if i < 0 {
		s.searched = len(s.buffer)
		return "", false
	}

	section := s.buffer[:i]
	s.dropPrefix(i + len(delimiter))
	return section, true
}

func (s *Segmenter) emitSentences(limit int, yield func(Event) bool) (int, bool) {
	removed := 0
	for {
		end, found := nextSentenceEnd(s.buffer, s.scanned, limit)
		if !found {
			s.scanned = limit
			return removed, true
		}

		sentence := s.buffer[:end]
		s.dropPrefix(end)
		limit -= end
		removed += end
		if !s.emitText(KindSentence, sentence, yield) {
			return removed, false
		}
	}
}

func (s *Segmenter) emitText(kind Kind, text string, yield func(Event) bool) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		return true
	}
	return yield(Event{Kind: kind, Text: text})
}

func (s *Segmenter) dropPrefix(n int) {
	s.buffer = s.buffer[n:]
	s.scanned = 0
	s.searched = max(0, s.searched-n)
}

func (s *Segmenter) searchFrom(delimiter string) int {
	return s.searched - len(delimiter) + 1
}

func (s *Segmenter) markersEnabled() bool {
	return s.options.MarkerStart != "" && s.options.MarkerEnd != ""
}
