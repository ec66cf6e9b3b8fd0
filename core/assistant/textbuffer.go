package assistant

import (
	"strings"
	"sync"
)

// textBuffer hands streamed text from the generation worker to the
// processing worker. Chunks blocks until more text arrives, the text is
// complete, the upstream failed or the buffer is cleared.
type textBuffer struct {
	mu             sync.Mutex
	chunks         []string
	chunksConsumed int
	textComplete   bool
	err            error
	errConsumed    bool
	cleared        bool
	updateSignal   chan struct{}
}

func newTextBuffer() *textBuffer {
	return &textBuffer{
		updateSignal: make(chan struct{}, 1),
	}
}

func (b *textBuffer) AddChunk(chunk string) {
	b.mu.Lock()
	b.chunks = append(b.chunks, chunk)
	b.mu.Unlock()
	b.signalUpdate()
}

func (b *textBuffer) TextComplete() {
	b.mu.Lock()
	b.textComplete = true
	b.mu.Unlock()
	b.signalUpdate()
}

// Fail ends the text with err. Chunks already added are still delivered
// before the error.
func (b *textBuffer) Fail(err error) {
	b.mu.Lock()
	if b.err == nil {
		b.err = err
	}
	b.textComplete = true
	b.mu.Unlock()
	b.signalUpdate()
}

func (b *textBuffer) Chunks(yield func(string, error) bool) {
	for {
		b.mu.Lock()
		if b.cleared {
			b.mu.Unlock()
			return
		}

		if b.chunksConsumed < len(b.chunks) {
			chunk := b.chunks[b.chunksConsumed]
			b.chunksConsumed++
			b.mu.Unlock()
			if !yield(chunk, nil) {
				return
			}
			continue
		}

		if b.err != nil && !b.errConsumed {
			err := b.err
			b.errConsumed = true
			b.mu.Unlock()
			yield("", err)
			return
		}

		if b.textComplete {
			b.mu.Unlock()
			return
		}

		b.mu.Unlock()
		<-b.updateSignal
	}
}

func (b *textBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return strings.Join(b.chunks, "")
}

func (b *textBuffer) Clear() {
	b.mu.Lock()
	b.cleared = true
	b.mu.Unlock()
	b.signalUpdate()
}

func (b *textBuffer) signalUpdate() {
	select {
	case b.updateSignal <- struct{}{}:
	default:
	}
}
