package llms

import (
	"strings"
	"testing"
)

func TestEstimateTokens(t *testing.T) {
	if got := EstimateTokens(nil); got != tokensReplyPrimer {
		t.Fatalf("expected %d tokens for no messages, got %d", tokensReplyPrimer, got)
	}

	messages := []Message{UserMessage("12345678")}
	if got, want := EstimateTokens(messages), tokensReplyPrimer+tokensPerMessage+2; got != want {
		t.Fatalf("expected %d tokens, got %d", want, got)
	}

	// Runes, not bytes, are counted.
	messages = []Message{UserMessage("žžžž")}
	if got, want := EstimateTokens(messages), tokensReplyPrimer+tokensPerMessage+1; got != want {
		t.Fatalf("expected %d tokens, got %d", want, got)
	}
}

func TestTrimToTokenLimitDropsOldestNonSystemMessages(t *testing.T) {
	long := strings.Repeat("a", 400)
	messages := []Message{
		SystemMessage("be brief"),
		UserMessage(long),
		AssistantMessage(long),
		UserMessage("latest question"),
	}

	limit := EstimateTokens([]Message{messages[0], messages[2], messages[3]})
	trimmed := TrimToTokenLimit(messages, limit)

	if len(trimmed) != 3 {
		t.Fatalf("expected 3 messages, got %d: %+v", len(trimmed), trimmed)
	}
	if trimmed[0].Role != MessageRoleSystem {
		t.Fatalf("system message must be kept first, got %+v", trimmed[0])
	}
	if trimmed[1].Role != MessageRoleAssistant || trimmed[2].Content != "latest question" {
		t.Fatalf("unexpected trimmed history: %+v", trimmed)
	}
	if len(messages) != 4 {
		t.Fatalf("input must not be modified, got %d messages", len(messages))
	}
}

func TestTrimToTokenLimitKeepsNewestMessage(t *testing.T) {
	messages := []Message{
		SystemMessage("be brief"),
		UserMessage(strings.Repeat("a", 4000)),
	}

	trimmed := TrimToTokenLimit(messages, 10)
	if len(trimmed) != 2 {
		t.Fatalf("expected both messages to be kept, got %+v", trimmed)
	}
}

func TestTrimToTokenLimitDisabled(t *testing.T) {
	messages := []Message{UserMessage(strings.Repeat("a", 4000))}
	if trimmed := TrimToTokenLimit(messages, 0); len(trimmed) != 1 {
		t.Fatalf("expected trimming to be disabled, got %+v", trimmed)
	}
}

func TestSplitSystem(t *testing.T) {
	instructions, rest := SplitSystem([]Message{
		SystemMessage("one"),
		UserMessage("hi"),
		SystemMessage("two"),
	})

	if instructions != "one\n\ntwo" {
		t.Fatalf("unexpected instructions %q", instructions)
	}
	if len(rest) != 1 || rest[0].Content != "hi" {
		t.Fatalf("unexpected rest %+v", rest)
	}
}
