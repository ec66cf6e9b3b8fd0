package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/koscakluka/ema-desk/core/llms"
)

func TestStreamCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}

		var body struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("failed to decode body: %v", err)
		}
		if body.Model != "gpt-4o-mini" || !body.Stream {
			t.Errorf("unexpected request %+v", body)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "Say hi" {
			t.Errorf("unexpected messages %+v", body.Messages)
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, data := range []string{
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"role":"assistant","content":"Hi"}}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":" there."},"finish_reason":"stop"}]}`,
			`{"id":"1","object":"chat.completion.chunk","choices":[],"usage":{"prompt_tokens":4,"completion_tokens":2,"total_tokens":6}}`,
			`[DONE]`,
		} {
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
	}))
	defer server.Close()

	client := NewClient("key", server.URL+"/v1", "gpt-4o-mini")
	stream := client.StreamCompletion(context.Background(), []llms.Message{
		llms.SystemMessage("be nice"),
		llms.UserMessage("Say hi"),
	})

	var text string
	var total int
	for chunk, err := range stream.Chunks(context.Background()) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		switch chunk := chunk.(type) {
		case llms.StreamContentChunk:
			text += chunk.Content()
		case llms.StreamUsageChunk:
			total = chunk.Usage().TotalTokens
		}
	}

	if text != "Hi there." {
		t.Fatalf("unexpected text %q", text)
	}
	if total != 6 {
		t.Fatalf("expected 6 total tokens, got %d", total)
	}
}

func TestStreamCompletionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	}))
	defer server.Close()

	client := NewClient("bad", server.URL+"/v1", "gpt-4o-mini")
	var gotErr error
	for _, err := range client.StreamCompletion(context.Background(), nil).Chunks(context.Background()) {
		gotErr = err
	}

	if gotErr == nil {
		t.Fatalf("expected an error")
	}
}
