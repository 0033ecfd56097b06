package speaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/insightloop/interview-insights/internal/domain/entities"
	"github.com/insightloop/interview-insights/internal/infrastructure/cache"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.response, f.err
}

const fencedResponse = "```json\n" + `[
  {"speaker_label": "Speaker A", "role": "researcher", "person_name": "", "job_title": ""},
  {"speaker_label": "Speaker B", "role": "participant", "person_name": "Sam Ortiz", "job_title": "Nurse"},
  {"speaker_label": "Speaker Z", "role": "observer", "person_name": "", "job_title": ""}
]` + "\n```"

func TestRefineParsesFencedResponse(t *testing.T) {
	client := &fakeLLM{response: fencedResponse}
	r := NewLLMRefiner(client, nil, 0, time.Second, nil)

	infos, err := r.Refine(context.Background(), "Speaker A: hello\n", []string{"Speaker A", "Speaker B"})
	if err != nil {
		t.Fatalf("Refine failed: %v", err)
	}
	// Speaker Z was never asked about and must be dropped.
	if len(infos) != 2 {
		t.Fatalf("expected 2 items, got %d: %+v", len(infos), infos)
	}
	if infos[0].Role != entities.SpeakerRoleResearcher {
		t.Fatalf("role not mapped: %+v", infos[0])
	}
	if infos[1].PersonName != "Sam Ortiz" || infos[1].JobTitle != "Nurse" {
		t.Fatalf("enrichment fields lost: %+v", infos[1])
	}
}

func TestRefineMalformedResponseErrors(t *testing.T) {
	client := &fakeLLM{response: "I cannot categorize these speakers."}
	r := NewLLMRefiner(client, nil, 0, time.Second, nil)

	if _, err := r.Refine(context.Background(), "window", []string{"Speaker A"}); err == nil {
		t.Fatal("malformed response must surface an error")
	}
}

func TestRefineRequestErrorPropagates(t *testing.T) {
	client := &fakeLLM{err: errors.New("upstream down")}
	r := NewLLMRefiner(client, nil, 0, time.Second, nil)

	if _, err := r.Refine(context.Background(), "window", []string{"Speaker A"}); err == nil {
		t.Fatal("request error must propagate")
	}
}

func TestRefineCachesResponses(t *testing.T) {
	client := &fakeLLM{response: fencedResponse}
	store := cache.NewMemoryStore()
	r := NewLLMRefiner(client, store, time.Minute, time.Second, nil)

	labels := []string{"Speaker A", "Speaker B"}
	if _, err := r.Refine(context.Background(), "window", labels); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	if _, err := r.Refine(context.Background(), "window", labels); err != nil {
		t.Fatalf("second call failed: %v", err)
	}
	if client.calls != 1 {
		t.Fatalf("identical window and labels must hit the cache, got %d calls", client.calls)
	}

	// A different window is a different key.
	if _, err := r.Refine(context.Background(), "other window", labels); err != nil {
		t.Fatalf("third call failed: %v", err)
	}
	if client.calls != 2 {
		t.Fatalf("new window must miss the cache, got %d calls", client.calls)
	}
}

func TestRefineEmptyInputsShortCircuit(t *testing.T) {
	client := &fakeLLM{response: fencedResponse}
	r := NewLLMRefiner(client, nil, 0, time.Second, nil)

	if infos, err := r.Refine(context.Background(), "window", nil); err != nil || infos != nil {
		t.Fatalf("no labels must be a no-op: %v %v", infos, err)
	}
	if infos, err := r.Refine(context.Background(), "   ", []string{"Speaker A"}); err != nil || infos != nil {
		t.Fatalf("blank window must be a no-op: %v %v", infos, err)
	}
	if client.calls != 0 {
		t.Fatalf("short circuits must not call the LLM, got %d calls", client.calls)
	}
}
