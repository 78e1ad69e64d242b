// Package ai bridges image scans to the Gemini generate-content API and
// normalizes the loosely typed JSON the model sends back.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// ErrNotConfigured is returned when no API key was supplied at startup.
var ErrNotConfigured = errors.New("image analysis is not configured")

// Analyzer produces a structured brand analysis from canonical PNG bytes.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, png []byte) (*Analysis, error)
	Enabled() bool
}

// GeminiAnalyzer implements Analyzer against the Gemini multimodal endpoint.
// A nil inner client means no API key was configured and calls fail fast.
type GeminiAnalyzer struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
	requestTimeout  time.Duration
	limiter         *rate.Limiter
	logger          *logging.ChanneledLogger
}

// NewGeminiAnalyzer builds the analyzer from ambient config. A missing
// GEMINI_API_KEY disables analysis instead of failing startup so the rest
// of the service keeps working.
func NewGeminiAnalyzer(logger *logging.ChanneledLogger) (*GeminiAnalyzer, error) {
	perMinute := config.AIRequestsPerMinute
	if perMinute < 1 {
		perMinute = 1
	}

	analyzer := &GeminiAnalyzer{
		model:           config.AIModel,
		temperature:     float32(config.AITemperature),
		maxOutputTokens: int32(config.AIMaxOutputTokens),
		requestTimeout:  config.AIRequestTimeout,
		limiter:         rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
		logger:          logger,
	}

	if config.GeminiAPIKey == "" {
		logger.AI().Warn("GEMINI_API_KEY not set, image analysis disabled")
		return analyzer, nil
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: config.GeminiAPIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	analyzer.client = client

	logger.AI().Info("Gemini analyzer ready", "model", analyzer.model, "requestsPerMinute", perMinute)
	return analyzer, nil
}

// Enabled reports whether an API key was configured.
func (a *GeminiAnalyzer) Enabled() bool {
	return a.client != nil
}

// AnalyzeImage submits one PNG plus the fixed instruction prompt and parses
// the reply. The configured request timeout applies when the caller supplied
// no deadline, and the call waits on the client-side rate limiter before
// going out.
func (a *GeminiAnalyzer) AnalyzeImage(ctx context.Context, png []byte) (*Analysis, error) {
	if a.client == nil {
		return nil, ErrNotConfigured
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.requestTimeout)
		defer cancel()
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("analysis rate limit: %w", err)
	}

	start := time.Now()
	a.logger.AI().Debug("Submitting image analysis", "model", a.model, "imageBytes", len(png))

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(png, "image/png"),
			genai.NewPartFromText(visionPrompt),
		}, genai.RoleUser),
	}

	resp, err := a.client.Models.GenerateContent(ctx, a.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(a.temperature),
		MaxOutputTokens: a.maxOutputTokens,
	})
	if err != nil {
		a.logger.AI().Error("Image analysis request failed", "error", err.Error(), "model", a.model, "duration", time.Since(start))
		return nil, fmt.Errorf("failed to analyze image: %w", err)
	}

	reply := resp.Text()
	if reply == "" {
		a.logger.AI().Error("Image analysis returned no content", "model", a.model, "duration", time.Since(start))
		return nil, fmt.Errorf("model returned no content")
	}

	analysis, err := ParseAnalysis(reply)
	if err != nil {
		a.logger.AI().Error("Image analysis reply rejected", "error", err.Error(), "model", a.model, "replyLength", len(reply))
		return nil, err
	}

	a.logger.AI().Info("Image analysis completed", "model", a.model,
		"duration", time.Since(start),
		"brandDetected", analysis.BrandDetected,
		"confidence", analysis.Confidence)
	return analysis, nil
}

// Close releases the underlying client.
func (a *GeminiAnalyzer) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

var _ Analyzer = (*GeminiAnalyzer)(nil)
