package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/luminor-ai/luminor-go/internal/domain/analytics"
	"github.com/luminor-ai/luminor-go/internal/domain/user"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/ai"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/media"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/transcription"
)

func newScanService(env *testEnv, analyzer ai.Analyzer, transcriber transcription.Transcriber, publisher *capturingPublisher) *ScanService {
	return NewScanService(
		env.logger,
		env.tracker,
		analyzer,
		transcriber,
		media.NewImageProcessor(1024),
		env.history,
		env.events,
		asPublisher(publisher),
	)
}

func TestScanImageKnownBrand(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	publisher := &capturingPublisher{}
	analyzer := &fakeAnalyzer{analysis: &ai.Analysis{
		BrandDetected: true,
		BrandName:     "Nike",
		Confidence:    92,
		Description:   "A white sneaker with a swoosh",
	}}
	svc := newScanService(env, analyzer, &fakeTranscriber{}, publisher)

	result, err := svc.ScanImage(context.Background(), "alice", testImage(t), true)
	if err != nil {
		t.Fatalf("ScanImage failed: %v", err)
	}
	if !result.Detected {
		t.Fatal("expected a detection")
	}
	if result.Record.ID != "nike" {
		t.Errorf("record id = %q, want nike (catalog hit)", result.Record.ID)
	}
	if result.Confidence != 92 {
		t.Errorf("confidence = %v, want 92", result.Confidence)
	}
	if !result.Saved {
		t.Error("scan should be saved with auto-save on")
	}

	records, err := env.history.ListByUsername("alice", 10)
	if err != nil || len(records) != 1 {
		t.Fatalf("history = %v, %v, want one row", records, err)
	}
	saved := records[0]
	if saved.ScanType != user.ScanTypeAIImage {
		t.Errorf("scan type = %q, want %q", saved.ScanType, user.ScanTypeAIImage)
	}
	if saved.Confidence != 92 {
		t.Errorf("saved confidence = %v, want 92", saved.Confidence)
	}
	if saved.ImageHash == "" {
		t.Error("image scans should record the upload digest")
	}

	if count := env.countRows(t, "analytics", "alice"); count != 1 {
		t.Errorf("analytics rows = %d, want 1", count)
	}
	if len(publisher.events) != 1 || publisher.events[0].Action != analytics.ActionBrandScanned {
		t.Errorf("published events = %+v, want one brand_scanned", publisher.events)
	}
}

func TestScanImageSynthesizesUnknownBrand(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	analyzer := &fakeAnalyzer{analysis: &ai.Analysis{
		BrandDetected:  true,
		BrandName:      "Glowtech Labs",
		Confidence:     64,
		Category:       "Technology",
		Keywords:       []string{"glow", "tech"},
		Competitors:    []string{"Philips", "Osram", "GE"},
		SentimentScore: 7,
	}}
	svc := newScanService(env, analyzer, &fakeTranscriber{}, nil)

	result, err := svc.ScanImage(context.Background(), "alice", testImage(t), true)
	if err != nil {
		t.Fatalf("ScanImage failed: %v", err)
	}

	digest := md5.Sum([]byte("Glowtech Labs"))
	wantID := "unknown_" + hex.EncodeToString(digest[:])[:8]
	if result.Record.ID != wantID {
		t.Errorf("record id = %q, want %q", result.Record.ID, wantID)
	}
	if result.Record.Name != "Glowtech Labs" {
		t.Errorf("name = %q, want the reported name", result.Record.Name)
	}
	if result.Record.Industry != "Technology" {
		t.Errorf("industry = %q, want Technology", result.Record.Industry)
	}
	if result.Record.Logo != "❓" {
		t.Errorf("logo = %q, want the placeholder", result.Record.Logo)
	}
	if result.Record.Slogan != "N/A" {
		t.Errorf("missing slogan should default to N/A, got %q", result.Record.Slogan)
	}
	if result.Record.AuthenticityTips != "Research thoroughly before purchase" {
		t.Errorf("authenticity tips default missing, got %q", result.Record.AuthenticityTips)
	}
	if result.Record.Description != "Brand not recognized in our database." {
		t.Errorf("description default missing, got %q", result.Record.Description)
	}
	if result.Record.SentimentScore != 7 {
		t.Errorf("sentiment = %v, want 7", result.Record.SentimentScore)
	}

	// The same unknown brand collapses to the same id on a rescan.
	again, err := svc.ScanImage(context.Background(), "alice", testImage(t), false)
	if err != nil {
		t.Fatalf("second ScanImage failed: %v", err)
	}
	if again.Record.ID != wantID {
		t.Errorf("rescan id = %q, want %q", again.Record.ID, wantID)
	}
}

func TestScanImageNamelessDetectionFallsBackToSentinel(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	analyzer := &fakeAnalyzer{analysis: &ai.Analysis{
		BrandDetected: true,
		BrandName:     "   ",
		Confidence:    40,
	}}
	svc := newScanService(env, analyzer, &fakeTranscriber{}, nil)

	result, err := svc.ScanImage(context.Background(), "alice", testImage(t), true)
	if err != nil {
		t.Fatalf("ScanImage failed: %v", err)
	}
	if result.Record.ID != "unknown" {
		t.Errorf("record id = %q, want the sentinel", result.Record.ID)
	}
	if result.Record.Name != "Unknown Brand" {
		t.Errorf("name = %q, want Unknown Brand", result.Record.Name)
	}
}

func TestScanImageNoDetection(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	publisher := &capturingPublisher{}
	analyzer := &fakeAnalyzer{analysis: &ai.Analysis{
		BrandDetected: false,
		Confidence:    0,
		Description:   "A city street at night",
	}}
	svc := newScanService(env, analyzer, &fakeTranscriber{}, publisher)

	result, err := svc.ScanImage(context.Background(), "alice", testImage(t), true)
	if err != nil {
		t.Fatalf("ScanImage failed: %v", err)
	}
	if result.Detected {
		t.Fatal("expected no detection")
	}
	if result.Description != "A city street at night" {
		t.Errorf("description = %q, want the scene description", result.Description)
	}
	if result.Saved {
		t.Error("undetected scans must not be saved")
	}

	if count := env.countRows(t, "user_history", "alice"); count != 0 {
		t.Errorf("history rows = %d, want 0", count)
	}
	if count := env.countRows(t, "analytics", "alice"); count != 0 {
		t.Errorf("analytics rows = %d, want 0", count)
	}
	if len(publisher.events) != 0 {
		t.Errorf("published events = %+v, want none", publisher.events)
	}
}

func TestScanImageHonorsAutoSaveOff(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	publisher := &capturingPublisher{}
	analyzer := &fakeAnalyzer{analysis: &ai.Analysis{
		BrandDetected: true,
		BrandName:     "Nike",
		Confidence:    88,
	}}
	svc := newScanService(env, analyzer, &fakeTranscriber{}, publisher)

	result, err := svc.ScanImage(context.Background(), "alice", testImage(t), false)
	if err != nil {
		t.Fatalf("ScanImage failed: %v", err)
	}
	if result.Saved {
		t.Error("auto-save off should skip the history row")
	}
	if count := env.countRows(t, "user_history", "alice"); count != 0 {
		t.Errorf("history rows = %d, want 0", count)
	}
	// The action itself still reaches analytics and the live feed.
	if count := env.countRows(t, "analytics", "alice"); count != 1 {
		t.Errorf("analytics rows = %d, want 1", count)
	}
	if len(publisher.events) != 1 {
		t.Errorf("published events = %d, want 1", len(publisher.events))
	}
}

func TestScanImageRejectsGarbageUpload(t *testing.T) {
	env := newTestEnv(t)
	svc := newScanService(env, &fakeAnalyzer{}, &fakeTranscriber{}, nil)

	_, err := svc.ScanImage(context.Background(), "alice", []byte("not an image"), true)
	if !errors.Is(err, ErrInvalidImage) {
		t.Errorf("err = %v, want ErrInvalidImage", err)
	}
}

func TestScanImageSurfacesAnalyzerConfiguration(t *testing.T) {
	env := newTestEnv(t)
	analyzer := &fakeAnalyzer{err: ai.ErrNotConfigured}
	svc := newScanService(env, analyzer, &fakeTranscriber{}, nil)

	_, err := svc.ScanImage(context.Background(), "alice", testImage(t), true)
	if !errors.Is(err, ai.ErrNotConfigured) {
		t.Errorf("err = %v, want ai.ErrNotConfigured to surface", err)
	}
}

func TestScanVoiceResolvesTranscript(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	publisher := &capturingPublisher{}
	svc := newScanService(env, &fakeAnalyzer{}, &fakeTranscriber{text: "I love my new Air Max shoes from Nike"}, publisher)

	result, err := svc.ScanVoice(context.Background(), "alice", []byte("fake-audio"), true)
	if err != nil {
		t.Fatalf("ScanVoice failed: %v", err)
	}
	if result.Record.ID != "nike" {
		t.Errorf("record id = %q, want nike", result.Record.ID)
	}
	if !strings.Contains(result.Transcript, "Air Max") {
		t.Errorf("transcript = %q, want the recognized text", result.Transcript)
	}
	if !result.Saved {
		t.Error("voice lookups should save with auto-save on")
	}

	records, err := env.history.ListByUsername("alice", 10)
	if err != nil || len(records) != 1 {
		t.Fatalf("history = %v, %v, want one row", records, err)
	}
	if records[0].ScanType != user.ScanTypeManual {
		t.Errorf("voice lookups record as %q, want %q", records[0].ScanType, user.ScanTypeManual)
	}
	if records[0].Confidence != 0 {
		t.Errorf("confidence = %v, want 0 for manual lookups", records[0].Confidence)
	}
}

func TestScanVoiceUnknownTranscriptNotSaved(t *testing.T) {
	env := newTestEnv(t)
	env.registerUser(t, "alice")
	publisher := &capturingPublisher{}
	svc := newScanService(env, &fakeAnalyzer{}, &fakeTranscriber{text: "ambient cafe noise"}, publisher)

	result, err := svc.ScanVoice(context.Background(), "alice", []byte("fake-audio"), true)
	if err != nil {
		t.Fatalf("ScanVoice failed: %v", err)
	}
	if !result.Record.IsUnknown() {
		t.Errorf("record = %+v, want the sentinel", result.Record)
	}
	if result.Saved {
		t.Error("unmatched transcripts should not be saved")
	}
	if count := env.countRows(t, "user_history", "alice"); count != 0 {
		t.Errorf("history rows = %d, want 0", count)
	}
	if len(publisher.events) != 0 {
		t.Errorf("published events = %+v, want none", publisher.events)
	}
}

func TestScanVoiceSurfacesTranscriberConfiguration(t *testing.T) {
	env := newTestEnv(t)
	svc := newScanService(env, &fakeAnalyzer{}, &fakeTranscriber{err: transcription.ErrNotConfigured}, nil)

	_, err := svc.ScanVoice(context.Background(), "alice", []byte("fake-audio"), true)
	if !errors.Is(err, transcription.ErrNotConfigured) {
		t.Errorf("err = %v, want transcription.ErrNotConfigured to surface", err)
	}
}
