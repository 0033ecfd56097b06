package transcribe

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
)

// SubtitleReader implements Transcriber for sessions that already carry a
// transcript file. Speech-to-text is skipped entirely for these sessions.
type SubtitleReader struct {
	logger *zap.Logger
}

// NewSubtitleReader creates a transcript-file reader.
func NewSubtitleReader(logger *zap.Logger) *SubtitleReader {
	return &SubtitleReader{logger: logger}
}

// Transcribe parses the session's transcript file into segments. Timestamps
// are parsed from the cue lines exactly once; everything downstream works in
// float seconds.
func (s *SubtitleReader) Transcribe(ctx context.Context, session entities.InputSession) ([]entities.TranscriptSegment, error) {
	file, ok := session.PrimaryTranscript()
	if !ok {
		return nil, fmt.Errorf("session %d has no transcript file", session.SessionID)
	}

	data, err := os.ReadFile(file.Path)
	if err != nil {
		return nil, fmt.Errorf("read transcript: %w", err)
	}

	var segments []entities.TranscriptSegment
	switch strings.ToLower(filepath.Ext(file.Path)) {
	case ".vtt":
		segments, err = parseCues(string(data), session.SessionID, true)
	case ".srt", ".sbv":
		segments, err = parseCues(string(data), session.SessionID, false)
	default:
		segments, err = parsePlainTranscript(string(data), session.SessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("parse transcript %s: %w", file.Path, err)
	}

	if s.logger != nil {
		s.logger.Info("transcript file ingested",
			zap.Int("session_id", session.SessionID),
			zap.String("file", file.Path),
			zap.Int("segments", len(segments)),
		)
	}

	return segments, nil
}

var (
	cueTimingRe = regexp.MustCompile(`(\d{1,2}:)?\d{2}:\d{2}[.,]\d{3}\s*-->\s*(\d{1,2}:)?\d{2}:\d{2}[.,]\d{3}`)
	voiceTagRe  = regexp.MustCompile(`<v\s+([^>]+)>`)
	htmlTagRe   = regexp.MustCompile(`</?[^>]+>`)
	bracketRe   = regexp.MustCompile(`^\[([A-Za-z0-9_ -]+)\]\s*`)
	namePrefRe  = regexp.MustCompile(`^([A-Za-z][A-Za-z .'-]{0,40}?):\s+`)
)

// parseCues handles both WebVTT and SRT: cue blocks separated by blank
// lines, each with one timing line followed by text lines.
func parseCues(content string, sessionID int, vtt bool) ([]entities.TranscriptSegment, error) {
	var segments []entities.TranscriptSegment

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	var cur *entities.TranscriptSegment
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")

		if vtt && (strings.HasPrefix(line, "WEBVTT") || strings.HasPrefix(line, "NOTE") || strings.HasPrefix(line, "STYLE")) {
			continue
		}

		if m := cueTimingRe.FindString(line); m != "" {
			if cur != nil && cur.Text != "" {
				segments = append(segments, *cur)
			}
			parts := strings.SplitN(m, "-->", 2)
			start := parseTimecode(strings.TrimSpace(parts[0]))
			end := parseTimecode(strings.TrimSpace(parts[1]))
			cur = &entities.TranscriptSegment{
				SessionID: sessionID,
				StartTime: start,
				EndTime:   end,
				Role:      entities.SpeakerRoleUnknown,
			}
			continue
		}

		if line == "" {
			if cur != nil && cur.Text != "" {
				segments = append(segments, *cur)
				cur = nil
			}
			continue
		}

		// Cue identifiers (bare indices or ids before the timing line).
		if cur == nil {
			continue
		}

		label, text := splitSpeakerPrefix(line)
		if label != "" && cur.SpeakerLabel == "" {
			cur.SpeakerLabel = label
		}
		if cur.Text != "" {
			cur.Text += " "
		}
		cur.Text += text
	}
	if err := scanner.Err(); err != nil {
		// A cue line past the buffer limit would otherwise truncate the
		// transcript silently.
		return nil, fmt.Errorf("scan cues: %w", err)
	}
	if cur != nil && cur.Text != "" {
		segments = append(segments, *cur)
	}

	// Legacy exports repeat the speaker tag only on the first cue of a turn.
	carryForwardLabels(segments)

	return segments, nil
}

// parsePlainTranscript handles document transcripts without cue timings:
// "Name: text" lines. Synthetic zero-length timestamps keep segments ordered.
func parsePlainTranscript(content string, sessionID int) ([]entities.TranscriptSegment, error) {
	var segments []entities.TranscriptSegment

	scanner := bufio.NewScanner(strings.NewReader(content))
	scanner.Buffer(make([]byte, 1024*1024), 1024*1024)

	i := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		label, text := splitSpeakerPrefix(line)
		segments = append(segments, entities.TranscriptSegment{
			SessionID:    sessionID,
			SpeakerLabel: label,
			StartTime:    float64(i),
			EndTime:      float64(i),
			Text:         text,
			Role:         entities.SpeakerRoleUnknown,
		})
		i++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan transcript: %w", err)
	}

	carryForwardLabels(segments)
	return segments, nil
}

// splitSpeakerPrefix strips a leading speaker marker from a text line:
// a VTT voice tag, a legacy "[CODE]" bracket, or a "Name:" prefix.
func splitSpeakerPrefix(line string) (label, text string) {
	if m := voiceTagRe.FindStringSubmatch(line); m != nil {
		label = strings.TrimSpace(m[1])
		text = htmlTagRe.ReplaceAllString(line, "")
		return label, strings.TrimSpace(text)
	}
	if m := bracketRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(line[len(m[0]):])
	}
	if m := namePrefRe.FindStringSubmatch(line); m != nil {
		return strings.TrimSpace(m[1]), strings.TrimSpace(line[len(m[0]):])
	}
	return "", strings.TrimSpace(line)
}

// carryForwardLabels fills unlabeled segments with the most recent label so a
// turn split over several cues keeps one speaker. A file with no labels at
// all collapses to one anonymous speaker.
func carryForwardLabels(segments []entities.TranscriptSegment) {
	last := "Speaker"
	for i := range segments {
		if segments[i].SpeakerLabel == "" {
			segments[i].SpeakerLabel = last
		} else {
			last = segments[i].SpeakerLabel
		}
	}
}

// parseTimecode converts "HH:MM:SS.mmm", "MM:SS.mmm" or the SRT comma
// variants to float seconds.
func parseTimecode(tc string) float64 {
	tc = strings.ReplaceAll(tc, ",", ".")
	parts := strings.Split(tc, ":")

	var h, m int
	var s float64
	var err error
	switch len(parts) {
	case 3:
		h, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0
		}
		m, err = strconv.Atoi(parts[1])
		if err != nil {
			return 0
		}
		s, err = strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return 0
		}
	case 2:
		m, err = strconv.Atoi(parts[0])
		if err != nil {
			return 0
		}
		s, err = strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return 0
		}
	default:
		return 0
	}
	return float64(h)*3600 + float64(m)*60 + s
}
