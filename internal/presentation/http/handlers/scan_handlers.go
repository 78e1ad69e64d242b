// Package handlers provides HTTP handlers for the AI scan endpoints.
package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/luminor-ai/luminor-go/internal/application/services"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/ai"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/media"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/logging"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/observability/performance"
	"github.com/luminor-ai/luminor-go/internal/infrastructure/transcription"
	"github.com/luminor-ai/luminor-go/internal/presentation/http/middleware"
	"github.com/luminor-ai/luminor-go/pkg/config"
)

// ImageScanRequest represents the JSON body variant of an image scan upload
type ImageScanRequest struct {
	ImageData string `json:"imageData" binding:"required"`
}

// ScanHandlers contains the image and voice scan HTTP handlers
type ScanHandlers struct {
	scanService *services.ScanService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

// NewScanHandlers creates scan handlers with injected dependencies
func NewScanHandlers(scanService *services.ScanService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *ScanHandlers {
	return &ScanHandlers{
		scanService: scanService,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// PostScanImage handles POST /api/v1/scan/image - AI brand detection on an
// uploaded image. The upload arrives as a multipart "image" file or as a
// JSON body carrying a base64 data URL.
func (h *ScanHandlers) PostScanImage(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("post_scan_image_request")
	defer marker.Complete()
	h.logger.Scan().Debug("Received image scan request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	imageData, ok := h.readImageUpload(c)
	if !ok {
		return
	}

	result, err := h.scanService.ScanImage(c.Request.Context(), session.Username, imageData, session.Preferences.AutoSaveScans)
	if err != nil {
		marker.SetError(err)
		h.logger.Perf().Info("Performance for PostScanImage request", "duration", marker.Duration, "success", false)

		switch {
		case errors.Is(err, services.ErrInvalidImage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload"})
		case errors.Is(err, ai.ErrNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image analysis is not configured"})
		default:
			h.logger.AI().Error("Image analysis failed", "error", err.Error(), "username", session.Username)
			c.JSON(http.StatusBadGateway, gin.H{"error": "Image analysis failed"})
		}
		return
	}

	h.logger.Scan().Info("Image scan request completed", "username", session.Username, "detected", result.Detected, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostScanImage request", "duration", marker.Duration, "success", true, "detected", result.Detected)

	response := gin.H{
		"detected":    result.Detected,
		"confidence":  result.Confidence,
		"description": result.Description,
		"saved":       result.Saved,
	}
	if result.Detected {
		response["brand"] = result.Record
	}
	c.JSON(http.StatusOK, response)
}

// PostScanVoice handles POST /api/v1/scan/voice - transcribes a multipart
// "audio" clip and resolves the transcript against the catalog.
func (h *ScanHandlers) PostScanVoice(c *gin.Context) {
	session, exists := middleware.GetSession(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "session context not found"})
		return
	}

	start := time.Now()
	marker := h.perfTracker.StartOperation("post_scan_voice_request")
	defer marker.Complete()
	h.logger.Scan().Debug("Received voice scan request", "method", c.Request.Method, "path", c.Request.URL.Path, "username", session.Username)

	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Audio file is required"})
		return
	}
	if file.Size > maxUploadBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Audio exceeds the upload size limit"})
		return
	}

	audio, err := readUpload(file)
	if err != nil {
		h.logger.Scan().Error("Audio upload read failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid audio upload"})
		return
	}

	result, err := h.scanService.ScanVoice(c.Request.Context(), session.Username, audio, session.Preferences.AutoSaveScans)
	if err != nil {
		marker.SetError(err)
		h.logger.Perf().Info("Performance for PostScanVoice request", "duration", marker.Duration, "success", false)

		if errors.Is(err, transcription.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Transcription is not configured"})
			return
		}
		h.logger.AI().Error("Transcription failed", "error", err.Error(), "username", session.Username)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Transcription failed"})
		return
	}

	h.logger.Scan().Info("Voice scan request completed", "username", session.Username, "brandId", result.Record.ID, "duration", time.Since(start))
	marker.SetSuccess(true)
	h.logger.Perf().Info("Performance for PostScanVoice request", "duration", marker.Duration, "success", true)

	c.JSON(http.StatusOK, gin.H{
		"transcript": result.Transcript,
		"brand":      result.Record,
		"known":      !result.Record.IsUnknown(),
		"saved":      result.Saved,
	})
}

// readImageUpload extracts the image bytes from either upload form. A false
// return means the response has already been written.
func (h *ScanHandlers) readImageUpload(c *gin.Context) ([]byte, bool) {
	if file, err := c.FormFile("image"); err == nil {
		if file.Size > maxUploadBytes() {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds the upload size limit"})
			return nil, false
		}
		data, err := readUpload(file)
		if err != nil {
			h.logger.Scan().Error("Image upload read failed", "error", err.Error())
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image upload"})
			return nil, false
		}
		return data, true
	}

	var req ImageScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Scan().Error("Image scan request binding failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return nil, false
	}

	data, err := media.DecodeDataURL(req.ImageData)
	if err != nil {
		h.logger.Scan().Error("Image data URL decode failed", "error", err.Error())
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
		return nil, false
	}
	if int64(len(data)) > maxUploadBytes() {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image exceeds the upload size limit"})
		return nil, false
	}
	return data, true
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	f, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func maxUploadBytes() int64 {
	return int64(config.MaxUploadSizeMB) << 20
}
