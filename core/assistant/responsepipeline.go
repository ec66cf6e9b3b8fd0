package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/koscakluka/ema-desk/core/llms"
	"github.com/koscakluka/ema-desk/core/segmenter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type responsePipeline struct {
	completer         llms.Completer
	completionOptions []llms.CompletionOption
	segmenterOptions  []segmenter.Option

	speaker   Speaker
	clipboard Clipboard
	onEvent   func(segmenter.Event)

	textBuffer *textBuffer

	stopMu    sync.Mutex
	stop      context.CancelFunc
	cancelled atomic.Bool
}

func (a *Assistant) newResponsePipeline() *responsePipeline {
	return &responsePipeline{
		completer:         a.completer,
		completionOptions: a.completionOptions,
		segmenterOptions:  a.segmenterOptions,
		speaker:           a.speaker,
		clipboard:         a.clipboard,
		onEvent:           a.onEvent,
		textBuffer:        newTextBuffer(),
	}
}

// Run streams a reply to messages and dispatches its segments until the
// reply ends, fails or the pipeline is cancelled. Cancelling ctx cancels the
// pipeline and Run returns the context error.
func (p *responsePipeline) Run(ctx context.Context, turn *Turn, messages []llms.Message) error {
	if p == nil || p.completer == nil {
		return fmt.Errorf("completer is required")
	}
	if turn == nil {
		return fmt.Errorf("turn is required")
	}

	parent := ctx
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	p.stopMu.Lock()
	p.stop = cancel
	p.stopMu.Unlock()
	if p.IsCancelled() {
		cancel()
	}

	var workerErr error
	workerErrMu := sync.Mutex{}
	addWorkerErr := func(err error) {
		if err == nil {
			return
		}
		workerErrMu.Lock()
		workerErr = errors.Join(workerErr, err)
		workerErrMu.Unlock()
	}

	run := func(name string, f func(context.Context) error) {
		defer func() {
			if recovered := recover(); recovered != nil {
				addWorkerErr(fmt.Errorf("%s worker panicked: %v", name, recovered))
				cancel()
			}
		}()

		if err := f(ctx); err != nil {
			addWorkerErr(fmt.Errorf("%s worker failed: %w", name, err))
			cancel()
		}
	}

	// The caller giving up is a cancellation, not the end of the reply:
	// nothing buffered may be dispatched after it.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-parent.Done():
			p.Cancel()
		case <-finished:
		}
	}()

	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		defer wg.Done()
		run("response generation", func(ctx context.Context) error {
			return p.generate(ctx, messages)
		})
	}()
	go func() {
		defer wg.Done()
		run("response processing", func(ctx context.Context) error {
			return p.process(ctx, turn)
		})
	}()
	wg.Wait()

	turn.Cancelled = p.IsCancelled() || parent.Err() != nil
	if turn.Cancelled && turn.Response == "" {
		turn.Response = strings.TrimSpace(p.textBuffer.String())
	}
	if err := parent.Err(); err != nil {
		return fmt.Errorf("response interrupted: %w", errors.Join(err, workerErr))
	}
	if workerErr != nil {
		return fmt.Errorf("one or more response processes failed: %w", workerErr)
	}
	return nil
}

// generate moves content chunks into the text buffer. Upstream errors are
// handed to the processing side through the buffer so the segmenter can
// decide whether to flush first.
func (p *responsePipeline) generate(ctx context.Context, messages []llms.Message) error {
	ctx, span := tracer.Start(ctx, "generate response")
	defer span.End()
	defer p.textBuffer.TextComplete()

	stream := p.completer.StreamCompletion(ctx, messages, p.completionOptions...)
	for chunk, err := range llms.ContentChunks(ctx, stream) {
		if p.IsCancelled() || ctx.Err() != nil {
			return nil
		}
		if err != nil {
			err = fmt.Errorf("failed to stream completion: %w", err)
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			p.textBuffer.Fail(err)
			return nil
		}
		p.textBuffer.AddChunk(chunk)
	}
	return nil
}

func (p *responsePipeline) process(ctx context.Context, turn *Turn) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			p.textBuffer.Clear()
		case <-done:
		}
	}()

	ctx, span := tracer.Start(ctx, "process response")
	defer span.End()

	for event, err := range segmenter.SegmentWithErrors(p.textBuffer.Chunks, p.segmenterOptions...) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
		if p.IsCancelled() || ctx.Err() != nil {
			break
		}

		segmentEventsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(event.Kind))))
		p.dispatch(ctx, turn, event)
	}
	span.SetAttributes(
		attribute.Int("response.sentences", len(turn.Sentences)),
		attribute.Int("response.clipboard_writes", len(turn.ClipboardWrites)),
	)
	return nil
}

func (p *responsePipeline) dispatch(ctx context.Context, turn *Turn, event segmenter.Event) {
	switch event.Kind {
	case segmenter.KindSentence:
		turn.Sentences = append(turn.Sentences, event.Text)
		if p.speaker != nil {
			if err := p.speaker.Speak(ctx, event.Text); err != nil {
				logger.WarnContext(ctx, "failed to speak sentence", "error", err)
			}
		}

	case segmenter.KindClipboardText:
		turn.ClipboardWrites = append(turn.ClipboardWrites, event.Text)
		if p.clipboard != nil {
			if err := p.clipboard.WriteText(event.Text); err != nil {
				logger.WarnContext(ctx, "failed to write clipboard", "error", err)
			}
		}

	case segmenter.KindFullResponse:
		turn.Response = event.Text
	}

	if p.onEvent != nil {
		p.onEvent(event)
	}
}

// Cancel stops dispatching. Events already dispatched stay in the turn.
func (p *responsePipeline) Cancel() {
	if p == nil || !p.cancelled.CompareAndSwap(false, true) {
		return
	}
	p.textBuffer.Clear()

	p.stopMu.Lock()
	defer p.stopMu.Unlock()
	if p.stop != nil {
		p.stop()
	}
}

func (p *responsePipeline) IsCancelled() bool {
	if p == nil {
		return false
	}
	return p.cancelled.Load()
}
