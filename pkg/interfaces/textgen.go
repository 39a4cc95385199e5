package interfaces

import "context"

// GenerationRequest is a single prompt sent to an external text-generation
// provider.
type GenerationRequest struct {
	System      string
	Prompt      string
	Model       string
	MaxTokens   int
	Temperature float64
}

// TextGenerator is the opaque text-generation boundary. Implementations
// perform one blocking request/response exchange and return free-form text.
// Retries and streaming are left to the implementation.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}
