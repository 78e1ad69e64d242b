// Package media provides image processing utilities
package media

import (
	"bytes"
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"regexp"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
)

// ImageProcessor normalizes uploaded scan images before AI analysis.
type ImageProcessor struct {
	maxDimension int
}

// NewImageProcessor creates a new ImageProcessor instance.
func NewImageProcessor(maxDimension int) *ImageProcessor {
	return &ImageProcessor{
		maxDimension: maxDimension,
	}
}

// ProcessedImage is the canonical form of an uploaded image: PNG bytes no
// larger than the configured dimension, plus the hash used for history rows.
type ProcessedImage struct {
	PNG          []byte
	Hash         string
	Width        int
	Height       int
	SourceFormat string
}

// dataURLPattern matches the prefix of a base64 data URL upload.
var dataURLPattern = regexp.MustCompile(`^data:image/[\w.+-]+;base64,`)

// DecodeDataURL turns a base64 upload into raw image bytes. The data URL
// prefix is optional; bare base64 is accepted too.
func DecodeDataURL(data string) ([]byte, error) {
	if data == "" {
		return nil, fmt.Errorf("empty image data")
	}
	b64 := dataURLPattern.ReplaceAllString(strings.TrimSpace(data), "")
	decoded, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image: %w", err)
	}
	return decoded, nil
}

// Prepare decodes an uploaded image, downscales it to fit the configured
// bounding box (never enlarging), and re-encodes it as PNG. The returned
// hash is computed over the processed PNG bytes, so identical uploads hash
// identically regardless of source format.
func (p *ImageProcessor) Prepare(data []byte) (*ProcessedImage, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	img, format, err := decodeImage(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > p.maxDimension || bounds.Dy() > p.maxDimension {
		img = imaging.Fit(img, p.maxDimension, p.maxDimension, imaging.Lanczos)
		bounds = img.Bounds()
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	sum := md5.Sum(buf.Bytes())
	return &ProcessedImage{
		PNG:          buf.Bytes(),
		Hash:         hex.EncodeToString(sum[:]),
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
		SourceFormat: format,
	}, nil
}

// decodeImage detects WebP by its RIFF container and routes everything else
// through the standard decoders.
func decodeImage(data []byte) (image.Image, string, error) {
	if isWebP(data) {
		img, err := webp.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, "", err
		}
		return img, "webp", nil
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", err
	}
	return img, format, nil
}

func isWebP(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}
