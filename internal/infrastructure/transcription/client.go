// Package transcription wraps the AssemblyAI SDK for voice lookups.
package transcription

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AssemblyAI/assemblyai-go-sdk"

	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// ErrNotConfigured is returned when no API key was supplied at startup.
var ErrNotConfigured = errors.New("transcription is not configured")

// transcriptionTimeout bounds upload plus polling for one job.
const transcriptionTimeout = 2 * time.Minute

// Transcriber turns an audio clip into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Enabled() bool
}

// AssemblyAITranscriber implements Transcriber, running one transcription
// job per call.
type AssemblyAITranscriber struct {
	apiKey string
	logger *logging.ChanneledLogger
}

// NewAssemblyAITranscriber builds the transcriber from ambient config. A
// missing AAI_API_KEY disables voice lookup instead of failing startup.
func NewAssemblyAITranscriber(logger *logging.ChanneledLogger) *AssemblyAITranscriber {
	if config.AssemblyAIAPIKey == "" {
		logger.AI().Warn("AAI_API_KEY not set, voice lookup disabled")
	}
	return &AssemblyAITranscriber{
		apiKey: config.AssemblyAIAPIKey,
		logger: logger,
	}
}

// Enabled reports whether an API key was configured.
func (t *AssemblyAITranscriber) Enabled() bool {
	return t.apiKey != ""
}

// Transcribe uploads the clip and waits for the finished transcript.
func (t *AssemblyAITranscriber) Transcribe(ctx context.Context, audio []byte) (string, error) {
	if t.apiKey == "" {
		return "", ErrNotConfigured
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, transcriptionTimeout)
		defer cancel()
	}

	start := time.Now()
	t.logger.AI().Debug("Submitting transcription job", "audioBytes", len(audio))

	client := assemblyai.NewClient(t.apiKey)

	params := &assemblyai.TranscriptOptionalParams{
		Punctuate:  assemblyai.Bool(true),
		FormatText: assemblyai.Bool(true),
	}

	transcript, err := client.Transcripts.TranscribeFromReader(ctx, bytes.NewReader(audio), params)
	if err != nil {
		t.logger.AI().Error("Transcription job failed", "error", err.Error(), "duration", time.Since(start))
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}

	if transcript.Status == assemblyai.TranscriptStatusError {
		message := assemblyai.ToString(transcript.Error)
		t.logger.AI().Error("Transcription job rejected", "error", message, "duration", time.Since(start))
		return "", fmt.Errorf("transcription failed: %s", message)
	}

	text := strings.TrimSpace(assemblyai.ToString(transcript.Text))
	if text == "" {
		t.logger.AI().Warn("Transcription produced no speech", "duration", time.Since(start))
		return "", fmt.Errorf("no speech recognized in audio")
	}

	t.logger.AI().Info("Transcription completed", "duration", time.Since(start), "textLength", len(text))
	return text, nil
}

var _ Transcriber = (*AssemblyAITranscriber)(nil)
