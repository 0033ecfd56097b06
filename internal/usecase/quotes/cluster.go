package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
	"github.com/insightloop/interview-insights/pkg/llm"
)

// Grouper maps quotes to named groups. Implementations promise each quote
// index appears in exactly one group, but callers run the partition safety
// net regardless.
type Grouper interface {
	Group(ctx context.Context, quotes []entities.Quote) ([]entities.GroupAssignment, error)
}

const screenClusterPrompt = `You are clustering user research quotes by the product screen they refer to.
Every quote below mentions a concrete screen, page, or UI element. Name each
cluster after its screen ("Login screen", "Search results").

Assign each quote index to exactly one cluster.

Return ONLY a JSON array:
[{"group": "Login screen", "quote_indices": [0, 3]}]

Quotes (index: speaker, text):
%s`

const themeGroupPrompt = `You are grouping user research quotes by theme. The quotes below describe
habits, feelings, and context rather than specific screens. Name each theme
in a few words ("Trust in automation", "Onboarding friction").

Assign each quote index to exactly one theme.

Return ONLY a JSON array:
[{"group": "Onboarding friction", "quote_indices": [1, 2]}]

Quotes (index: speaker, text):
%s`

type llmGrouper struct {
	client llm.Client
	prompt string
	logger *zap.Logger
}

// NewScreenClusterer groups screen-specific quotes by the screen they
// mention.
func NewScreenClusterer(client llm.Client, logger *zap.Logger) Grouper {
	return &llmGrouper{client: client, prompt: screenClusterPrompt, logger: logger}
}

// NewThemeGrouper groups general-context quotes by theme.
func NewThemeGrouper(client llm.Client, logger *zap.Logger) Grouper {
	return &llmGrouper{client: client, prompt: themeGroupPrompt, logger: logger}
}

func (g *llmGrouper) Group(ctx context.Context, quotes []entities.Quote) ([]entities.GroupAssignment, error) {
	if len(quotes) == 0 {
		return nil, nil
	}

	var b strings.Builder
	for i, q := range quotes {
		fmt.Fprintf(&b, "%d: %s, %q\n", i, q.SpeakerCode, q.Text)
	}

	content, err := g.client.Complete(ctx, fmt.Sprintf(g.prompt, b.String()))
	if err != nil {
		return nil, fmt.Errorf("grouping request: %w", err)
	}

	var assignments []entities.GroupAssignment
	if err := json.Unmarshal([]byte(llm.ExtractJSON(content)), &assignments); err != nil {
		return nil, fmt.Errorf("failed to parse grouping response: %w", err)
	}

	// Empty group names would collide with nothing meaningful downstream.
	kept := assignments[:0]
	for _, a := range assignments {
		if strings.TrimSpace(a.Group) == "" {
			if g.logger != nil {
				g.logger.Warn("dropping assignment with empty group name",
					zap.Ints("quote_indices", a.QuoteIndices))
			}
			continue
		}
		kept = append(kept, a)
	}
	return kept, nil
}
