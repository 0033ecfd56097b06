package transcribe

import (
	"context"
	"fmt"
	"os"
	"time"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"
	backoff "github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/insightloop/interview-insights/internal/domain/entities"
	"github.com/insightloop/interview-insights/pkg/config"
)

// AssemblyAI transcribes session media through the AssemblyAI API with
// speaker labels enabled.
type AssemblyAI struct {
	client       *aai.Client
	languageCode string
	logger       *zap.Logger
}

// NewAssemblyAI creates an AssemblyAI-backed transcriber.
func NewAssemblyAI(cfg *config.AssemblyConfig, logger *zap.Logger) *AssemblyAI {
	lang := "en"
	if cfg != nil && cfg.LanguageCode != "" {
		lang = cfg.LanguageCode
	}
	var key string
	if cfg != nil {
		key = cfg.APIKey
	}
	return &AssemblyAI{
		client:       aai.NewClient(key),
		languageCode: lang,
		logger:       logger,
	}
}

// Transcribe uploads the session's primary media file and waits for the
// transcript. The upload is retried with exponential backoff; the returned
// utterances are mapped to segments with millisecond timestamps converted to
// float seconds exactly once.
func (a *AssemblyAI) Transcribe(ctx context.Context, session entities.InputSession) ([]entities.TranscriptSegment, error) {
	media, ok := session.PrimaryMedia()
	if !ok {
		return nil, fmt.Errorf("session %d has no audio or video file", session.SessionID)
	}

	var uploadURL string
	submitFn := func() error {
		f, err := os.Open(media.Path)
		if err != nil {
			// A missing file will not appear on retry.
			return backoff.Permanent(fmt.Errorf("open media file: %w", err))
		}
		defer f.Close()

		uploadURL, err = a.client.Upload(ctx, f)
		if err != nil {
			return fmt.Errorf("upload to AssemblyAI: %w", err)
		}
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 2 * time.Second
	bo.MaxInterval = 10 * time.Second
	bo.MaxElapsedTime = 60 * time.Second

	if err := backoff.Retry(submitFn, backoff.WithContext(bo, ctx)); err != nil {
		return nil, err
	}

	if a.logger != nil {
		a.logger.Info("media uploaded to AssemblyAI",
			zap.Int("session_id", session.SessionID),
			zap.String("file", media.Path),
		)
	}

	params := &aai.TranscriptOptionalParams{
		LanguageCode:  aai.TranscriptLanguageCode(a.languageCode),
		SpeakerLabels: aai.Bool(true),
	}

	transcript, err := a.client.Transcripts.TranscribeFromURL(ctx, uploadURL, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if transcript.Status == aai.TranscriptStatusError {
		msg := "unknown error"
		if transcript.Error != nil {
			msg = *transcript.Error
		}
		return nil, fmt.Errorf("transcription failed: %s", msg)
	}

	segments := make([]entities.TranscriptSegment, 0, len(transcript.Utterances))
	for _, u := range transcript.Utterances {
		seg := entities.TranscriptSegment{
			SessionID: session.SessionID,
			Role:      entities.SpeakerRoleUnknown,
		}
		if u.Speaker != nil {
			seg.SpeakerLabel = "Speaker " + *u.Speaker
		}
		if u.Text != nil {
			seg.Text = *u.Text
		}
		if u.Start != nil {
			seg.StartTime = float64(*u.Start) / 1000.0
		}
		if u.End != nil {
			seg.EndTime = float64(*u.End) / 1000.0
		}
		segments = append(segments, seg)
	}

	if a.logger != nil {
		a.logger.Info("transcription completed",
			zap.Int("session_id", session.SessionID),
			zap.Int("utterances", len(segments)),
		)
	}

	return segments, nil
}
