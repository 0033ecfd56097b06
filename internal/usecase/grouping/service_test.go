package grouping

import (
	"math/rand"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

func file(path string) entities.InputFile {
	return entities.NewInputFile(path, time.Date(2024, 3, 5, 14, 30, 0, 0, time.UTC))
}

func TestNormalizeStemTeams(t *testing.T) {
	a := normalizeStem("20240305_143000-meeting recording")
	b := normalizeStem("20240305_143000-meeting transcript")
	if a != b {
		t.Fatalf("teams recording and transcript must share a key: %q vs %q", a, b)
	}
	if a != "20240305_143000" {
		t.Fatalf("unexpected key: %q", a)
	}

	c := normalizeStem("weekly sync-20240312_100000-meeting recording")
	if c == a {
		t.Fatal("distinct meetings must not share a key")
	}
}

func TestNormalizeStemZoom(t *testing.T) {
	a := normalizeStem("audio transcript_123456789012_march_5_2024")
	if a != "123456789012_march_5_2024" {
		t.Fatalf("zoom prefix not stripped: %q", a)
	}

	// Topic-carrying export keeps the topic as the key.
	b := normalizeStem("checkout study_987654321_march_5_2024")
	if b != "checkout study" {
		t.Fatalf("zoom suffix not stripped: %q", b)
	}
}

func TestNormalizeStemGoogleMeet(t *testing.T) {
	a := normalizeStem("checkout walkthrough (2024-03-05 at 14:30 gmt+1)")
	b := normalizeStem("checkout walkthrough (2024-03-05 at 14:30 gmt+1) - transcript")
	if a != b || a != "checkout walkthrough" {
		t.Fatalf("gmeet normalization mismatch: %q vs %q", a, b)
	}
}

func TestNormalizeStemLegacyAndUnknown(t *testing.T) {
	if got := normalizeStem("interview07_subtitles"); got != "interview07" {
		t.Fatalf("legacy suffix not stripped: %q", got)
	}
	// Unmatched stems compare raw.
	if got := normalizeStem("random notes final v2"); got != "random notes final v2" {
		t.Fatalf("unmatched stem must be unchanged: %q", got)
	}
}

func TestGroupTeamsPair(t *testing.T) {
	svc := NewService(nil)
	sessions := svc.Group([]entities.InputFile{
		file("in/20240305_143000-Meeting Recording.mp4"),
		file("in/20240305_143000-meeting transcript.vtt"),
	})
	if len(sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(sessions))
	}
	if len(sessions[0].Files) != 2 {
		t.Fatalf("expected both files in the session, got %d", len(sessions[0].Files))
	}
	if !sessions[0].HasExistingTranscript {
		t.Error("vtt member must set has_existing_transcript")
	}
}

func TestGroupDirectoryPassClaimsFirst(t *testing.T) {
	svc := NewService(nil)
	sessions := svc.Group([]entities.InputFile{
		file("in/interview07_subtitles.srt"),
		file("in/2024-03-05 14.30.00 Checkout flow 9815324/video.mp4"),
		file("in/2024-03-05 14.30.00 Checkout flow 9815324/audio.m4a"),
		file("in/interview07.mp4"),
	})
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}
	// Directory groups take the lower session ids.
	if len(sessions[0].Files) != 2 || !strings.Contains(sessions[0].Files[0].Path, "Checkout flow") {
		t.Fatalf("session 1 must be the directory group: %+v", sessions[0])
	}
	if sessions[0].SessionID != 1 || sessions[1].SessionID != 2 {
		t.Fatalf("session ids must be sequential: %d, %d", sessions[0].SessionID, sessions[1].SessionID)
	}
	if sessions[0].HasExistingTranscript {
		t.Error("media-only session must not claim an existing transcript")
	}
}

func TestGroupUnrecognizedDegradesToSingletons(t *testing.T) {
	svc := NewService(nil)
	sessions := svc.Group([]entities.InputFile{
		file("in/notes_final.mp4"),
		file("in/other_recording_v2.mp4"),
	})
	if len(sessions) != 2 {
		t.Fatalf("unrelated files must not merge: got %d sessions", len(sessions))
	}
	for _, s := range sessions {
		if len(s.Files) != 1 {
			t.Fatalf("expected one-file session, got %d files", len(s.Files))
		}
	}
}

func TestGroupOrderIndependentAsSets(t *testing.T) {
	files := []entities.InputFile{
		file("in/20240305_143000-Meeting Recording.mp4"),
		file("in/20240305_143000-meeting transcript.vtt"),
		file("in/2024-03-05 14.30.00 Checkout flow 9815324/video.mp4"),
		file("in/interview07.mp4"),
		file("in/interview07_subtitles.srt"),
		file("in/Audio Transcript_123456789012_March_5_2024.vtt"),
		file("in/123456789012_March_5_2024.mp4"),
	}

	svc := NewService(nil)
	want := groupFingerprint(svc.Group(files))

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 10; i++ {
		shuffled := append([]entities.InputFile(nil), files...)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		got := groupFingerprint(svc.Group(shuffled))
		if got != want {
			t.Fatalf("grouping must be order independent as a set:\nwant %s\ngot  %s", want, got)
		}
	}
}

// groupFingerprint renders groups as a canonical string, ignoring session id
// sequencing.
func groupFingerprint(sessions []entities.InputSession) string {
	var groups []string
	for _, s := range sessions {
		var paths []string
		for _, f := range s.Files {
			paths = append(paths, f.Path)
		}
		sort.Strings(paths)
		groups = append(groups, strings.Join(paths, "|"))
	}
	sort.Strings(groups)
	return strings.Join(groups, "\n")
}

func TestGroupZoomPairExample(t *testing.T) {
	svc := NewService(nil)
	sessions := svc.Group([]entities.InputFile{
		file("in/Audio Transcript_123456789012_March_5_2024.vtt"),
		file("in/123456789012_March_5_2024.mp4"),
	})
	if len(sessions) != 1 {
		t.Fatalf("zoom transcript must join its sibling video: got %d sessions", len(sessions))
	}
	if !sessions[0].HasExistingTranscript {
		t.Error("expected has_existing_transcript")
	}
}
