// Package encoder turns a flattened portrait into bytes: a JPEG tagged
// with its print resolution, searched down in quality until it fits a
// byte-size window.
package encoder

import (
	"fmt"
	"image"
	"strings"
)

// Encoder encodes an image to a specific format.
type Encoder interface {
	// Format returns the output format name (e.g. "jpeg", "png").
	Format() string

	// Encode converts the image to bytes at the given quality (1-100),
	// tagging the output with dpi where the format supports it.
	// Encoders without a quality knob ignore quality.
	Encode(img image.Image, quality, dpi int) ([]byte, error)

	// Extension returns the file extension without dot.
	Extension() string
}

// ForFormat returns the encoder registered for name.
func ForFormat(name string) (Encoder, error) {
	switch strings.ToLower(name) {
	case "jpeg", "jpg":
		return &JPEGEncoder{}, nil
	case "png":
		return &PNGEncoder{}, nil
	}
	return nil, fmt.Errorf("encoder: unsupported format %q", name)
}
