package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestWatcherTriggersAfterSettle(t *testing.T) {
	root := t.TempDir()

	triggered := make(chan string, 4)
	w := NewWatcher(root, 100*time.Millisecond, func(ctx context.Context, study string) {
		triggered <- study
	}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Give the watcher a moment to register the root.
	time.Sleep(100 * time.Millisecond)

	study := filepath.Join(root, "usability study 12")
	if err := os.Mkdir(study, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(study, "interview_transcript.vtt"), []byte("WEBVTT\n"), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-triggered:
		if got != study {
			t.Fatalf("triggered for %q, want %q", got, study)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("watcher never triggered")
	}

	// The burst above must coalesce into a single trigger.
	select {
	case got := <-triggered:
		t.Fatalf("unexpected second trigger for %q", got)
	case <-time.After(300 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestStudyForIgnoresLooseRootFiles(t *testing.T) {
	root := t.TempDir()
	w := NewWatcher(root, time.Second, nil, zap.NewNop())

	loose := filepath.Join(root, "notes.txt")
	if err := os.WriteFile(loose, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if got := w.studyFor(loose); got != "" {
		t.Fatalf("loose file must not map to a study, got %q", got)
	}

	study := filepath.Join(root, "study")
	if err := os.Mkdir(study, 0755); err != nil {
		t.Fatal(err)
	}
	if got := w.studyFor(filepath.Join(study, "a.mp4")); got != study {
		t.Fatalf("nested file must map to its study, got %q", got)
	}
	if got := w.studyFor(study); got != study {
		t.Fatalf("study dir must map to itself, got %q", got)
	}
}
