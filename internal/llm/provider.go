// Package llm abstracts the remote generation capability: submit a prompt
// with a token ceiling, receive text or a typed, transient-vs-fatal
// classified failure.
package llm

import "context"

// Provider is the core abstraction for LLM interaction.
type Provider interface {
	// Complete sends a single-turn prompt to the model and returns the raw
	// text it produced. Implementations classify failures into the typed
	// errors of this package.
	Complete(ctx context.Context, req Request) (*Completion, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request describes one chat-completion call.
type Request struct {
	// System sets the model's role and output contract.
	System string

	// Prompt is the user message.
	Prompt string

	// MaxTokens is the response token ceiling for this call.
	MaxTokens int

	// Temperature controls randomness. Range: 0.0 - 1.0.
	Temperature float64
}

// Completion holds the model's output.
type Completion struct {
	// Text is the raw response text, unparsed.
	Text string

	// TokensUsed is the total token count reported by the provider,
	// 0 when the provider does not report usage.
	TokensUsed int

	// Model is the actual model that served the request.
	Model string
}
