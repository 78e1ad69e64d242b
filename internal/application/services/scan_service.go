package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/domain/entities/brand"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/ai"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/media"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/messaging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/transcription"
)

// ErrInvalidImage marks uploads that could not be decoded as an image.
var ErrInvalidImage = errors.New("invalid image")

// ScanService runs the AI-backed scan flows: image analysis through Gemini
// and voice lookup through AssemblyAI.
type ScanService struct {
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
	analyzer    ai.Analyzer
	transcriber transcription.Transcriber
	images      *media.ImageProcessor
	recorder    *activityRecorder
}

// NewScanService creates the scan service.
func NewScanService(
	logger *logging.ChanneledLogger,
	perfTracker *performance.Tracker,
	analyzer ai.Analyzer,
	transcriber transcription.Transcriber,
	images *media.ImageProcessor,
	history user.HistoryRepository,
	events analytics.EventRepository,
	activity messaging.Publisher,
) *ScanService {
	return &ScanService{
		logger:      logger,
		perfTracker: perfTracker,
		analyzer:    analyzer,
		transcriber: transcriber,
		images:      images,
		recorder: &activityRecorder{
			logger:   logger,
			history:  history,
			events:   events,
			activity: activity,
		},
	}
}

// ImageScanResult is the outcome of one image scan. Record is only
// meaningful when Detected is true; Description carries the model's scene
// description either way.
type ImageScanResult struct {
	Detected    bool
	Record      brand.Record
	Confidence  float64
	Description string
	Saved       bool
}

// VoiceScanResult is the outcome of one voice lookup.
type VoiceScanResult struct {
	Transcript string
	Record     brand.Record
	Saved      bool
}

// ScanImage normalizes the upload, submits it for analysis, and resolves the
// detected brand. A catalog hit yields the catalog record; anything else
// gets an ad hoc profile synthesized from the model reply. Only detected
// brands are recorded.
func (s *ScanService) ScanImage(ctx context.Context, username string, imageData []byte, autoSave bool) (*ImageScanResult, error) {
	marker := s.perfTracker.StartOperation("scan_image")
	defer marker.Complete()

	processed, err := s.images.Prepare(imageData)
	if err != nil {
		s.logger.Scan().Warn("Image upload rejected", "error", err.Error(), "username", username)
		return nil, fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	analysis, err := s.analyzer.AnalyzeImage(ctx, processed.PNG)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("analyzing image: %w", err)
	}

	if !analysis.BrandDetected {
		s.logger.Scan().Info("Image scan found no brand", "username", username, "confidence", analysis.Confidence)
		marker.SetSuccess(true)
		return &ImageScanResult{
			Detected:    false,
			Confidence:  analysis.Confidence,
			Description: analysis.Description,
		}, nil
	}

	record := brand.Resolve(analysis.BrandName)
	if record.IsUnknown() {
		record = synthesizeRecord(analysis)
	}

	saved := s.recorder.recordScan(username, record, user.ScanTypeAIImage, analysis.Confidence, processed.Hash, autoSave)

	s.logger.Scan().Info("Image scan completed",
		"username", username,
		"brandId", record.ID,
		"brandName", record.Name,
		"confidence", analysis.Confidence,
		"saved", saved)
	marker.SetSuccess(true)
	return &ImageScanResult{
		Detected:    true,
		Record:      record,
		Confidence:  analysis.Confidence,
		Description: analysis.Description,
		Saved:       saved,
	}, nil
}

// ScanVoice transcribes the clip and feeds the transcript through the
// resolver. A catalog hit is recorded as a manual lookup; an unmatched
// transcript yields the sentinel and leaves history untouched.
func (s *ScanService) ScanVoice(ctx context.Context, username string, audio []byte, autoSave bool) (*VoiceScanResult, error) {
	marker := s.perfTracker.StartOperation("scan_voice")
	defer marker.Complete()

	transcript, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		marker.SetError(err)
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}

	record := brand.Resolve(transcript)
	saved := false
	if !record.IsUnknown() {
		saved = s.recorder.recordScan(username, record, user.ScanTypeManual, 0, "", autoSave)
	}

	s.logger.Scan().Info("Voice lookup completed",
		"username", username,
		"brandId", record.ID,
		"transcriptLength", len(transcript),
		"saved", saved)
	marker.SetSuccess(true)
	return &VoiceScanResult{
		Transcript: transcript,
		Record:     record,
		Saved:      saved,
	}, nil
}

// synthesizeRecord builds a brand profile for a detection outside the
// catalog. The id is derived from the reported name so repeat scans of the
// same unknown brand collapse to one id; a nameless detection falls back to
// the sentinel id.
func synthesizeRecord(a *ai.Analysis) brand.Record {
	name := strings.TrimSpace(a.BrandName)
	id := brand.UnknownID
	if name != "" {
		digest := md5.Sum([]byte(name))
		id = "unknown_" + hex.EncodeToString(digest[:])[:8]
	}

	return brand.Record{
		ID:                  id,
		Name:                orDefault(name, "Unknown Brand"),
		Industry:            orDefault(a.Category, "Unknown"),
		Logo:                "❓",
		Slogan:              orDefault(a.Slogan, "N/A"),
		SustainabilityScore: a.SustainabilityScore,
		SentimentScore:      a.SentimentScore,
		AuthenticityTips:    orDefault(a.AuthenticityTips, "Research thoroughly before purchase"),
		Description:         orDefault(a.Description, "Brand not recognized in our database."),
		Founded:             a.Founded,
		Headquarters:        a.Headquarters,
		MarketCap:           a.MarketCap,
		StockSymbol:         a.StockSymbol,
		Competitors:         a.Competitors,
		Website:             a.Website,
		Stores:              a.Stores,
		Offers:              a.Offers,
		SimilarLogos:        a.SimilarLogos,
		BrandColors:         a.Colors,
		Keywords:            a.Keywords,
		LogoElements:        a.LogoElements,
	}
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
