package quotes

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

func quoteFixture(n int, qt entities.QuoteType) []entities.Quote {
	quotes := make([]entities.Quote, n)
	for i := range quotes {
		quotes[i] = entities.Quote{
			ID:        uuid.New(),
			SessionID: 1,
			Text:      "quote",
			QuoteType: qt,
		}
	}
	return quotes
}

func assignmentsFor(placements []entities.FinalPlacement) map[uuid.UUID][]string {
	m := make(map[uuid.UUID][]string)
	for _, p := range placements {
		m[p.QuoteID] = append(m[p.QuoteID], p.Group)
	}
	return m
}

func TestPartitionExactlyOncePerQuote(t *testing.T) {
	screen := quoteFixture(3, entities.QuoteTypeScreenSpecific)
	theme := quoteFixture(2, entities.QuoteTypeGeneralContext)
	quotes := append(append([]entities.Quote{}, screen...), theme...)

	placements := Partition(quotes,
		[]entities.GroupAssignment{
			{Group: "Login screen", QuoteIndices: []int{0, 2}},
			{Group: "Dashboard", QuoteIndices: []int{1}},
		},
		[]entities.GroupAssignment{
			{Group: "Trust", QuoteIndices: []int{0, 1}},
		},
		nil,
	)

	if len(placements) != len(quotes) {
		t.Fatalf("expected %d placements, got %d", len(quotes), len(placements))
	}
	for id, groups := range assignmentsFor(placements) {
		if len(groups) != 1 {
			t.Fatalf("quote %s placed %d times: %v", id, len(groups), groups)
		}
	}
	for _, p := range placements {
		if p.Fallback || len(p.DemotedFrom) > 0 {
			t.Fatalf("clean assignment must produce no corrections: %+v", p)
		}
	}
}

func TestPartitionDuplicateClaimFirstGroupWins(t *testing.T) {
	quotes := quoteFixture(2, entities.QuoteTypeScreenSpecific)

	placements := Partition(quotes,
		[]entities.GroupAssignment{
			{Group: "Login screen", QuoteIndices: []int{0, 1}},
			{Group: "Settings", QuoteIndices: []int{0}},
			{Group: "Checkout", QuoteIndices: []int{0}},
		},
		nil, nil,
	)

	if len(placements) != 2 {
		t.Fatalf("expected 2 placements, got %d", len(placements))
	}
	first := placements[0]
	if first.Group != "Login screen" {
		t.Fatalf("first claiming group must win, got %q", first.Group)
	}
	if want := []string{"Settings", "Checkout"}; !reflect.DeepEqual([]string(first.DemotedFrom), want) {
		t.Fatalf("demotions must record later groups in order: %v", first.DemotedFrom)
	}
}

func TestPartitionUnplacedQuoteFallsBack(t *testing.T) {
	quotes := quoteFixture(3, entities.QuoteTypeGeneralContext)

	placements := Partition(quotes, nil,
		[]entities.GroupAssignment{
			{Group: "Habits", QuoteIndices: []int{0, 2}},
		},
		nil,
	)

	if len(placements) != 3 {
		t.Fatalf("no quote may be dropped, got %d placements", len(placements))
	}
	middle := placements[1]
	if middle.Group != entities.FallbackGroup || !middle.Fallback {
		t.Fatalf("unclaimed quote must land in the fallback group: %+v", middle)
	}
	if middle.Kind != entities.PlacementKindTheme {
		t.Fatalf("fallback must keep the quote's kind: %+v", middle)
	}
}

func TestPartitionRoutesByQuoteType(t *testing.T) {
	// Indices are per-type: index 0 in the screen assignment is the first
	// screen-specific quote, not the first quote overall.
	quotes := []entities.Quote{
		{ID: uuid.New(), QuoteType: entities.QuoteTypeGeneralContext, Text: "context"},
		{ID: uuid.New(), QuoteType: entities.QuoteTypeScreenSpecific, Text: "screen"},
	}

	placements := Partition(quotes,
		[]entities.GroupAssignment{{Group: "Search results", QuoteIndices: []int{0}}},
		[]entities.GroupAssignment{{Group: "Motivation", QuoteIndices: []int{0}}},
		nil,
	)

	byID := make(map[uuid.UUID]entities.FinalPlacement)
	for _, p := range placements {
		byID[p.QuoteID] = p
	}
	if p := byID[quotes[1].ID]; p.Group != "Search results" || p.Kind != entities.PlacementKindScreen {
		t.Fatalf("screen quote misrouted: %+v", p)
	}
	if p := byID[quotes[0].ID]; p.Group != "Motivation" || p.Kind != entities.PlacementKindTheme {
		t.Fatalf("context quote misrouted: %+v", p)
	}
}

func TestPartitionIgnoresOutOfRangeIndices(t *testing.T) {
	quotes := quoteFixture(1, entities.QuoteTypeScreenSpecific)

	placements := Partition(quotes,
		[]entities.GroupAssignment{
			{Group: "Login screen", QuoteIndices: []int{-1, 5, 0}},
		},
		nil, nil,
	)

	if len(placements) != 1 || placements[0].Group != "Login screen" {
		t.Fatalf("valid index must still place the quote: %+v", placements)
	}
}

func TestPartitionIdempotent(t *testing.T) {
	quotes := quoteFixture(4, entities.QuoteTypeScreenSpecific)
	exclusive := []entities.GroupAssignment{
		{Group: "A", QuoteIndices: []int{0, 1}},
		{Group: "B", QuoteIndices: []int{2, 3}},
	}

	first := Partition(quotes, exclusive, nil, nil)

	// Rebuild the assignment from the output and run it through again.
	byGroup := make(map[string][]int)
	var order []string
	for _, p := range first {
		if _, seen := byGroup[p.Group]; !seen {
			order = append(order, p.Group)
		}
	}
	for i := range quotes {
		for _, p := range first {
			if p.QuoteID == quotes[i].ID {
				byGroup[p.Group] = append(byGroup[p.Group], i)
			}
		}
	}
	var rebuilt []entities.GroupAssignment
	for _, g := range order {
		rebuilt = append(rebuilt, entities.GroupAssignment{Group: g, QuoteIndices: byGroup[g]})
	}

	second := Partition(quotes, rebuilt, nil, nil)
	for i := range first {
		if first[i].QuoteID != second[i].QuoteID || first[i].Group != second[i].Group || first[i].Fallback != second[i].Fallback {
			t.Fatalf("reapplying an exclusive assignment must change nothing:\n%+v\n%+v", first[i], second[i])
		}
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	if got := Partition(nil, nil, nil, nil); len(got) != 0 {
		t.Fatalf("no quotes means no placements, got %v", got)
	}
}
