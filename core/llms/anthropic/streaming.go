// Package anthropic streams replies from the Anthropic Messages API.
package anthropic

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/koscakluka/ema-desk/core/llms"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	apiVersion     = "2023-06-01"

	// The Messages API requires max_tokens to be set.
	defaultMaxTokens = 1024

	chunkPrefix = "data:"
)

type Client struct {
	baseURL string
	apiKey  string
	model   string

	httpClient *http.Client
}

func NewClient(apiKey, baseURL, model string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
	}
}

func (c *Client) StreamCompletion(_ context.Context, messages []llms.Message, opts ...llms.CompletionOption) llms.Stream {
	return &Stream{
		client:   c,
		options:  llms.NewCompletionOptions(c.model, opts...),
		messages: messages,
	}
}

type Stream struct {
	client *Client

	options  llms.CompletionOptions
	messages []llms.Message
}

func (s *Stream) Chunks(ctx context.Context) func(func(llms.StreamChunk, error) bool) {
	return func(yield func(llms.StreamChunk, error) bool) {
		ctx, span := tracer.Start(ctx, "stream completion")
		defer span.End()
		span.SetAttributes(attribute.String("request.model", s.options.Model))

		fail := func(err error) {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			yield(nil, err)
		}

		system, messages := toMessages(s.messages)
		reqBody := requestBody{
			Model:       s.options.Model,
			System:      system,
			Messages:    messages,
			MaxTokens:   s.options.MaxTokens,
			Temperature: s.options.Temperature,
			Stream:      true,
		}
		if reqBody.MaxTokens <= 0 {
			reqBody.MaxTokens = defaultMaxTokens
		}

		requestBodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			fail(fmt.Errorf("error marshalling JSON: %w", err))
			return
		}

		req, err := http.NewRequestWithContext(ctx, "POST", s.client.baseURL+"/v1/messages", bytes.NewBuffer(requestBodyBytes))
		if err != nil {
			fail(fmt.Errorf("error creating HTTP request: %w", err))
			return
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", s.client.apiKey)
		req.Header.Set("anthropic-version", apiVersion)

		resp, err := s.client.httpClient.Do(req)
		if err != nil {
			fail(fmt.Errorf("error sending request: %w", err))
			return
		}
		defer resp.Body.Close()

		span.SetAttributes(attribute.Int("response.status_code", resp.StatusCode))
		if resp.StatusCode != http.StatusOK {
			if errorBody, err := io.ReadAll(resp.Body); err == nil {
				span.SetAttributes(attribute.String("response.error", string(errorBody)))
			}
			fail(fmt.Errorf("non-OK HTTP status: %s", resp.Status))
			return
		}

		usage := llms.Usage{}
		var stopReason *string
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, chunkPrefix) {
				// event: lines repeat the type carried in the data payload
				continue
			}
			chunk := strings.TrimSpace(strings.TrimPrefix(line, chunkPrefix))
			if len(chunk) == 0 {
				continue
			}

			var body streamingBody
			if err := json.Unmarshal([]byte(chunk), &body); err != nil {
				err = fmt.Errorf("error unmarshalling JSON: %w", err)
				span.RecordError(err)
				logger.WarnContext(ctx, "skipping malformed event", "error", err)
				continue
			}

			switch body.Type {
			case streamingEventMessageStart:
				if body.Message != nil {
					usage.InputTokens = body.Message.Usage.InputTokens
				}

			case streamingEventContentBlockDelta:
				if body.Delta == nil || body.Delta.Type != "text_delta" || body.Delta.Text == "" {
					continue
				}
				if !yield(llms.ContentChunk{Text: body.Delta.Text}, nil) {
					return
				}

			case streamingEventMessageDelta:
				if body.Delta != nil {
					stopReason = body.Delta.StopReason
				}
				if body.Usage != nil {
					usage.OutputTokens = body.Usage.OutputTokens
				}

			case streamingEventMessageStop:
				usage.TotalTokens = usage.InputTokens + usage.OutputTokens
				span.SetAttributes(attribute.Int("usage.total", usage.TotalTokens))
				yield(llms.UsageChunk{Tokens: usage, Finish: stopReason}, nil)
				return

			case streamingEventError:
				message := "unknown error"
				if body.Error != nil {
					message = body.Error.Type + ": " + body.Error.Message
				}
				fail(fmt.Errorf("stream error: %s", message))
				return

			default:
				logger.DebugContext(ctx, "ignoring stream event", "type", body.Type)
			}
		}

		if err := scanner.Err(); err != nil {
			fail(fmt.Errorf("error reading streamed response: %w", err))
		}
	}
}
