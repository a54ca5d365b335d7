package llm

import (
	"context"
)

// TokenUsage tracks the tokens consumed by a request.
type TokenUsage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	Model            string
}

// ContentResponse contains the generated text and metadata about the call.
// Truncated is set when the model stopped because it ran out of output
// tokens; the normalizer uses it to decide whether brace-balancing repair
// is worth attempting.
type ContentResponse struct {
	Content   string
	Truncated bool
	Usage     TokenUsage
}

// TextGenerator is an interface for generating text from a prompt.
// When jsonOnly is true the provider is asked to emit a bare JSON object.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string, jsonOnly bool) (ContentResponse, error)
}

// APIKeySetter is implemented by clients whose credential can be swapped
// at runtime without rebuilding the client.
type APIKeySetter interface {
	SetAPIKey(key string)
}

// Refresher re-reads a credential from its backing store.
type Refresher interface {
	Refresh() (string, error)
}

// Closer is an interface for closing resources.
type Closer interface {
	Close() error
}
