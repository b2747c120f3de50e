package raster

import (
	"fmt"
	"image"
	"io"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// Format selects the snapshot encoding.
type Format string

const (
	WebP Format = "webp"
	TGA  Format = "tga"
)

// ParseFormat accepts a format name or a file extension (".webp").
func ParseFormat(s string) (Format, error) {
	switch strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".") {
	case "webp":
		return WebP, nil
	case "tga":
		return TGA, nil
	}
	return "", fmt.Errorf("raster: unknown image format %q", s)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == TGA {
		return "image/x-tga"
	}
	return "image/webp"
}

// Encode writes img in format f. WebP output is lossless.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("raster: webp encode: %w", err)
		}
	case TGA:
		if err := tga.Encode(w, img); err != nil {
			return fmt.Errorf("raster: tga encode: %w", err)
		}
	default:
		return fmt.Errorf("raster: unknown image format %q", f)
	}
	return nil
}
