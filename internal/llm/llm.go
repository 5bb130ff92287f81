package llm

import "context"

// Client is a text generation backend. Implementations return the raw model
// output; callers own parsing and validation.
type Client interface {
	Summarize(ctx context.Context, text string) (string, error)
	GenerateQuiz(ctx context.Context, text string) (string, error)
	NewChat(ctx context.Context) (Chat, error)
}

// Chat is a multi-turn conversation with a fixed system instruction. A failed
// Send leaves the conversation history unchanged.
type Chat interface {
	Send(ctx context.Context, message string) (string, error)
}
