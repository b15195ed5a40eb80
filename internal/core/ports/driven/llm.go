package driven

import "context"

// ChatService sends a single-turn prompt to a chat completion endpoint.
type ChatService interface {
	// Complete returns the assistant reply for the request.
	// A non-success HTTP status is returned as *domain.ExternalAPIError.
	// A successful response of unexpected shape is not an error; the raw
	// body is returned as the reply.
	Complete(ctx context.Context, req ChatRequest) (string, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the endpoint is reachable and the key is accepted.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	// Role is "system", "user", or "assistant".
	Role string

	// Content is the message text.
	Content string
}

// ChatRequest configures one completion call.
type ChatRequest struct {
	// System is the fixed system instruction.
	System string

	// Messages follow the system instruction, usually one user message.
	Messages []ChatMessage

	// Model overrides the configured model when set.
	Model string

	// MaxTokens limits response length.
	MaxTokens int

	// Temperature controls randomness (0.0-1.0).
	Temperature float64
}
