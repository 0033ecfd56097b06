package llm

import "context"

// Client is the minimal text-generation surface the pipeline depends on.
// All collaborator clients (speaker refinement, quote extraction, clustering,
// theme grouping) are built on this one method so providers are swappable.
type Client interface {
	// Complete sends one prompt and returns the raw assistant text.
	Complete(ctx context.Context, prompt string) (string, error)
}
