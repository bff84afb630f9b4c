package app

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type CompletionOpts struct {
	MaxTokens   int
	Temperature *float64
}

// Completer issues a single chat completion against the model provider.
type Completer interface {
	Complete(ctx context.Context, model string, msgs []Message, opts CompletionOpts) (string, error)
}

// EventCapturer records a product analytics event for an optimization run.
type EventCapturer interface {
	Capture(eventType string, runId string) error
}

// Pacer throttles batches of completion calls. A nil pacer means no
// throttling, which keeps tests off the clock.
type Pacer interface {
	Wait(ctx context.Context) error
}
