package segmenter

type Kind string

const (
	// KindSentence is natural language text meant to be vocalized.
	KindSentence Kind = "sentence"
	// KindClipboardText is text meant to be written to the clipboard.
	KindClipboardText Kind = "clipboard_text"
	// KindFullResponse is the trimmed concatenation of every chunk. It is
	// always the last event of a stream.
	KindFullResponse Kind = "full_response"
)

type Event struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
}

func (e Event) String() string {
	return string(e.Kind) + ": " + e.Text
}
