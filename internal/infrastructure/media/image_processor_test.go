package media

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
)

func testPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test png: %v", err)
	}
	return buf.Bytes()
}

func TestPrepareKeepsSmallImages(t *testing.T) {
	p := NewImageProcessor(1024)

	out, err := p.Prepare(testPNG(t, 100, 50))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if out.Width != 100 || out.Height != 50 {
		t.Errorf("dimensions = %dx%d, want 100x50 untouched", out.Width, out.Height)
	}
	if out.SourceFormat != "png" {
		t.Errorf("source format = %q, want png", out.SourceFormat)
	}
	if len(out.PNG) == 0 {
		t.Error("expected processed PNG bytes")
	}
	if len(out.Hash) != 32 {
		t.Errorf("hash length = %d, want 32 hex chars", len(out.Hash))
	}
}

func TestPrepareDownscalesLargeImages(t *testing.T) {
	p := NewImageProcessor(1024)

	out, err := p.Prepare(testPNG(t, 2048, 1024))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if out.Width != 1024 || out.Height != 512 {
		t.Errorf("dimensions = %dx%d, want 1024x512 with aspect preserved", out.Width, out.Height)
	}
}

func TestPrepareHashIsDeterministic(t *testing.T) {
	p := NewImageProcessor(1024)
	data := testPNG(t, 64, 64)

	first, err := p.Prepare(data)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	second, err := p.Prepare(data)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if first.Hash != second.Hash {
		t.Errorf("same upload hashed differently: %q vs %q", first.Hash, second.Hash)
	}

	other, err := p.Prepare(testPNG(t, 65, 64))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if other.Hash == first.Hash {
		t.Error("different uploads should hash differently")
	}
}

func TestPrepareDecodesWebP(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 40, 20))
	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Lossless: true}); err != nil {
		t.Fatalf("failed to encode test webp: %v", err)
	}

	p := NewImageProcessor(1024)
	out, err := p.Prepare(buf.Bytes())
	if err != nil {
		t.Fatalf("Prepare failed for webp: %v", err)
	}
	if out.SourceFormat != "webp" {
		t.Errorf("source format = %q, want webp", out.SourceFormat)
	}
	if out.Width != 40 || out.Height != 20 {
		t.Errorf("dimensions = %dx%d, want 40x20", out.Width, out.Height)
	}
}

func TestPrepareRejectsGarbage(t *testing.T) {
	p := NewImageProcessor(1024)
	if _, err := p.Prepare([]byte("definitely not an image")); err == nil {
		t.Error("expected error for non-image payload")
	}
	if _, err := p.Prepare(nil); err == nil {
		t.Error("expected error for empty payload")
	}
}

func TestDecodeDataURL(t *testing.T) {
	raw := testPNG(t, 8, 8)
	encoded := base64.StdEncoding.EncodeToString(raw)

	withPrefix, err := DecodeDataURL("data:image/png;base64," + encoded)
	if err != nil {
		t.Fatalf("DecodeDataURL with prefix failed: %v", err)
	}
	if !bytes.Equal(withPrefix, raw) {
		t.Error("decoded bytes differ from original")
	}

	bare, err := DecodeDataURL(encoded)
	if err != nil {
		t.Fatalf("DecodeDataURL without prefix failed: %v", err)
	}
	if !bytes.Equal(bare, raw) {
		t.Error("bare base64 decoded bytes differ from original")
	}

	if _, err := DecodeDataURL("data:image/png;base64,!!!not-base64!!!"); err == nil {
		t.Error("expected error for invalid base64")
	}
	if _, err := DecodeDataURL(""); err == nil {
		t.Error("expected error for empty input")
	}
}
