// Package imaging re-encodes image formats browsers cannot be relied on to
// display into baseline JPEG.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"io"

	"github.com/gen2brain/avif"
	"github.com/gen2brain/heic"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"
)

const (
	// DefaultQuality is the JPEG quality used for converted images
	DefaultQuality = 90
	// OutputMimeType is the MIME type of every converted image
	OutputMimeType = "image/jpeg"
	// maxPixels bounds decoded image size
	maxPixels = 120_000_000
)

var (
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrImageTooLarge     = errors.New("image dimensions too large")
)

type decoder struct {
	decode       func(io.Reader) (image.Image, error)
	decodeConfig func(io.Reader) (image.Config, error)
}

// decoders lists the source types that get converted
var decoders = map[string]decoder{
	"image/heic": {decode: heic.Decode, decodeConfig: heic.DecodeConfig},
	"image/heif": {decode: heic.Decode, decodeConfig: heic.DecodeConfig},
	"image/webp": {decode: webp.Decode, decodeConfig: webp.DecodeConfig},
	"image/tiff": {decode: tiff.Decode, decodeConfig: tiff.DecodeConfig},
	"image/avif": {decode: avif.Decode, decodeConfig: avif.DecodeConfig},
}

// jpegConverter converts images to JPEG at a fixed quality
type jpegConverter struct {
	quality int
}

// NewConverter creates a converter encoding at the given JPEG quality.
// Out of range values fall back to DefaultQuality.
func NewConverter(quality int) *jpegConverter {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &jpegConverter{quality: quality}
}

// NeedsConversion reports whether images of mimeType are re-encoded
func (c *jpegConverter) NeedsConversion(mimeType string) bool {
	_, ok := decoders[mimeType]
	return ok
}

// ConvertToJPEG decodes data as mimeType and re-encodes it as JPEG.
// Transparent areas are flattened onto white.
func (c *jpegConverter) ConvertToJPEG(data []byte, mimeType string) ([]byte, error) {
	dec, ok := decoders[mimeType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mimeType)
	}

	cfg, err := dec.decodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s header: %w", mimeType, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxPixels {
		return nil, fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}

	img, err := dec.decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", mimeType, err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flatten(img), &jpeg.Options{Quality: c.quality}); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// flatten composites img over an opaque white background
func flatten(img image.Image) image.Image {
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Over)
	return dst
}
