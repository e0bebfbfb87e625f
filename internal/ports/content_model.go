package ports

import "context"

// ContentModel is the raw generative-text collaborator: one prompt in, one
// JSON object out. Retry, validation and fallback live in the usecase gateway,
// not here.
type ContentModel interface {
	// GenerateJSON submits a prompt pair and returns the parsed top-level
	// JSON object with values rendered as strings.
	GenerateJSON(ctx context.Context, systemPrompt string, userPrompt string) (map[string]string, error)

	// Configured reports whether a credential is present. Unconfigured
	// models are never called.
	Configured() bool
}
