package assistant

import "context"

// Speaker voices reply sentences, one at a time and in order.
type Speaker interface {
	Speak(ctx context.Context, sentence string) error
}

// Clipboard receives text the reply marked for copying.
type Clipboard interface {
	WriteText(text string) error
}

// ClipboardReader provides the text attached to a prompt by AttachClipboard.
type ClipboardReader interface {
	ReadText() (string, error)
}

type SpeakerFunc func(ctx context.Context, sentence string) error

func (f SpeakerFunc) Speak(ctx context.Context, sentence string) error {
	return f(ctx, sentence)
}
