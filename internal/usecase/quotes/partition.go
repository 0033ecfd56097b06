package quotes

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// Partition produces exactly one placement per input quote. Screen-specific
// quotes are matched against the screen assignment, general-context quotes
// against the theme assignment; assignment indices refer into the per-type
// subsequence in original quote order, mirroring what the external service
// was sent. Never fails: contract violations are corrected in place.
func Partition(quotes []entities.Quote, screen, theme []entities.GroupAssignment, logger *zap.Logger) []entities.FinalPlacement {
	var screenQuotes, themeQuotes []entities.Quote
	for _, q := range quotes {
		if q.QuoteType == entities.QuoteTypeScreenSpecific {
			screenQuotes = append(screenQuotes, q)
		} else {
			themeQuotes = append(themeQuotes, q)
		}
	}

	placements := reconcile(screenQuotes, screen, entities.PlacementKindScreen, logger)
	placements = append(placements, reconcile(themeQuotes, theme, entities.PlacementKindTheme, logger)...)
	return placements
}

// reconcile applies the within-type safety net. For each quote the winning
// group is the first one claiming it in the service's own output order;
// later claims are recorded as demotions. Quotes no group claims land in the
// fallback bucket. Applying this to an already-exclusive assignment changes
// nothing.
func reconcile(quotes []entities.Quote, assignments []entities.GroupAssignment, kind entities.PlacementKind, logger *zap.Logger) []entities.FinalPlacement {
	if len(quotes) == 0 {
		return nil
	}

	// Index in the slice is the position of the winning placement, so output
	// order follows quote order regardless of how the service ordered its
	// groups.
	placed := make([]*entities.FinalPlacement, len(quotes))

	for _, a := range assignments {
		for _, idx := range a.QuoteIndices {
			if idx < 0 || idx >= len(quotes) {
				if logger != nil {
					logger.Warn("assignment references quote out of range",
						zap.String("kind", string(kind)),
						zap.String("group", a.Group),
						zap.Int("index", idx),
					)
				}
				continue
			}
			q := quotes[idx]
			if p := placed[idx]; p != nil {
				// Duplicate claim. First group wins; record where the quote
				// was demoted from.
				p.DemotedFrom = append(p.DemotedFrom, a.Group)
				if logger != nil {
					logger.Warn("quote claimed by multiple groups, keeping first",
						zap.String("kind", string(kind)),
						zap.String("quote_id", q.ID.String()),
						zap.String("kept", p.Group),
						zap.String("demoted_from", a.Group),
					)
				}
				continue
			}
			placed[idx] = &entities.FinalPlacement{
				ID:      uuid.New(),
				QuoteID: q.ID,
				Group:   a.Group,
				Kind:    kind,
			}
		}
	}

	out := make([]entities.FinalPlacement, 0, len(quotes))
	for i, q := range quotes {
		p := placed[i]
		if p == nil {
			p = &entities.FinalPlacement{
				ID:       uuid.New(),
				QuoteID:  q.ID,
				Group:    entities.FallbackGroup,
				Kind:     kind,
				Fallback: true,
			}
			if logger != nil {
				logger.Warn("quote left unplaced, using fallback group",
					zap.String("kind", string(kind)),
					zap.String("quote_id", q.ID.String()),
				)
			}
		}
		out = append(out, *p)
	}
	return out
}
