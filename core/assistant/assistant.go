// Package assistant runs conversation turns: it keeps the chat history,
// streams each reply and dispatches its sentences and clipboard sections
// as they complete.
package assistant

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/koscakluka/ema-desk/core/llms"
	"github.com/koscakluka/ema-desk/core/segmenter"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

const clipboardContextPrefix = "\n\nTHE USER HAS THIS TEXT COPIED TO THEIR CLIPBOARD:\n"

type Assistant struct {
	completer         llms.Completer
	completionOptions []llms.CompletionOption
	segmenterOptions  []segmenter.Option

	speaker         Speaker
	clipboard       Clipboard
	clipboardReader ClipboardReader
	onEvent         func(segmenter.Event)

	systemPrompt string
	tokenLimit   int

	// turnMu serialises Respond calls.
	turnMu sync.Mutex

	mu              sync.Mutex
	history         []llms.Message
	attachClipboard bool
	activePipeline  *responsePipeline
}

func New(completer llms.Completer, opts ...AssistantOption) *Assistant {
	a := &Assistant{completer: completer}
	for _, opt := range opts {
		opt(a)
	}
	a.history = a.initialHistory()
	return a
}

func (a *Assistant) initialHistory() []llms.Message {
	if a.systemPrompt == "" {
		return nil
	}
	return []llms.Message{llms.SystemMessage(a.systemPrompt)}
}

// Respond sends transcript as the next user message and dispatches the
// reply. The reply is added to the history even when dispatch failed part
// way through.
func (a *Assistant) Respond(ctx context.Context, transcript string) (Turn, error) {
	a.turnMu.Lock()
	defer a.turnMu.Unlock()

	ctx, span := tracer.Start(ctx, "respond")
	defer span.End()

	turn := Turn{ID: uuid.New(), Prompt: transcript}
	span.SetAttributes(attribute.String("turn.id", turn.ID.String()))

	messages := a.appendPrompt(ctx, transcript)

	pipeline := a.newResponsePipeline()
	a.mu.Lock()
	a.activePipeline = pipeline
	a.mu.Unlock()

	err := pipeline.Run(ctx, &turn, messages)

	a.mu.Lock()
	a.activePipeline = nil
	if turn.Response != "" {
		a.history = append(a.history, llms.AssistantMessage(turn.Response))
	}
	a.mu.Unlock()

	outcome := "completed"
	switch {
	case err != nil:
		outcome = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case turn.Cancelled:
		outcome = "cancelled"
	}
	turnsCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))

	if err != nil {
		return turn, fmt.Errorf("failed to respond: %w", err)
	}
	return turn, nil
}

// appendPrompt adds the user message (and the attached clipboard, if any) to
// the history, trims it and returns a copy to send.
func (a *Assistant) appendPrompt(ctx context.Context, transcript string) []llms.Message {
	a.mu.Lock()
	attach := a.attachClipboard
	a.attachClipboard = false
	a.mu.Unlock()

	var clipboardText string
	if attach && a.clipboardReader != nil {
		text, err := a.clipboardReader.ReadText()
		if err != nil {
			logger.WarnContext(ctx, "failed to read clipboard", "error", err)
		}
		clipboardText = text
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if clipboardText != "" {
		a.history = append(a.history, llms.UserMessage(clipboardContextPrefix+"```"+clipboardText+"```"))
	}
	a.history = append(a.history, llms.UserMessage(transcript))
	a.history = llms.TrimToTokenLimit(a.history, a.tokenLimit)

	return append([]llms.Message(nil), a.history...)
}

// AttachClipboard makes the next Respond call include the current clipboard
// contents as context. It has no effect without a clipboard reader.
func (a *Assistant) AttachClipboard() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.attachClipboard = true
}

func (a *Assistant) ClipboardAttached() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.attachClipboard
}

// Cancel stops the reply in progress, if there is one.
func (a *Assistant) Cancel() {
	a.mu.Lock()
	pipeline := a.activePipeline
	a.mu.Unlock()

	pipeline.Cancel()
}

// ClearHistory forgets every turn, keeping only the system prompt.
func (a *Assistant) ClearHistory() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = a.initialHistory()
}

func (a *Assistant) History() []llms.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]llms.Message(nil), a.history...)
}
