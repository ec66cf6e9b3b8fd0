package anthropic

import "github.com/koscakluka/ema-desk/core/llms"

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func toMessages(messages []llms.Message) (string, []message) {
	system, rest := llms.SplitSystem(messages)
	converted := make([]message, 0, len(rest))
	for _, m := range rest {
		converted = append(converted, message{Role: string(m.Role), Content: m.Content})
	}
	return system, converted
}

type requestBody struct {
	Model       string    `json:"model"`
	System      string    `json:"system,omitempty"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
	Stream      bool      `json:"stream"`
}

type streamingEventType string

const (
	streamingEventMessageStart      streamingEventType = "message_start"
	streamingEventContentBlockDelta streamingEventType = "content_block_delta"
	streamingEventMessageDelta      streamingEventType = "message_delta"
	streamingEventMessageStop       streamingEventType = "message_stop"
	streamingEventError             streamingEventType = "error"
)

type streamingBody struct {
	Type    streamingEventType `json:"type"`
	Message *struct {
		Usage struct {
			InputTokens int `json:"input_tokens"`
		} `json:"usage"`
	} `json:"message,omitempty"`
	Delta *struct {
		Type       string  `json:"type"`
		Text       string  `json:"text"`
		StopReason *string `json:"stop_reason"`
	} `json:"delta,omitempty"`
	Usage *struct {
		OutputTokens int `json:"output_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}
