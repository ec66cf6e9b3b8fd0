package llms

import "unicode/utf8"

const (
	charsPerToken     = 4
	tokensPerMessage  = 4
	tokensReplyPrimer = 3
)

// EstimateTokens approximates the prompt size of messages. It is meant for
// budgeting history, not for billing.
func EstimateTokens(messages []Message) int {
	total := tokensReplyPrimer
	for _, message := range messages {
		total += tokensPerMessage + estimateTextTokens(message.Content)
	}
	return total
}

func estimateTextTokens(text string) int {
	chars := utf8.RuneCountInString(text)
	return (chars + charsPerToken - 1) / charsPerToken
}

// TrimToTokenLimit drops the oldest non-system messages until the estimate
// fits in limit. System messages and the newest message are always kept,
// so the result can still exceed limit. A non-positive limit disables
// trimming.
func TrimToTokenLimit(messages []Message, limit int) []Message {
	if limit <= 0 || EstimateTokens(messages) <= limit {
		return messages
	}

	trimmed := append([]Message(nil), messages...)
	for EstimateTokens(trimmed) > limit {
		oldest := -1
		for i, message := range trimmed[:len(trimmed)-1] {
			if message.Role != MessageRoleSystem {
				oldest = i
				break
			}
		}
		if oldest < 0 {
			break
		}
		trimmed = append(trimmed[:oldest], trimmed[oldest+1:]...)
	}
	return trimmed
}
