package encoder

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// JPEGEncoder encodes images to baseline JPEG with a JFIF density header.
// The standard library encoder is deterministic, which the quality search
// relies on.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string    { return "jpeg" }
func (e *JPEGEncoder) Extension() string { return "jpg" }

func (e *JPEGEncoder) Encode(img image.Image, quality, dpi int) ([]byte, error) {
	if quality < 1 || quality > 100 {
		return nil, fmt.Errorf("jpeg: quality %d out of range 1-100", quality)
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024) // typical 960x1280 portraits land in the low hundreds of KB

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return SetDensity(buf.Bytes(), dpi)
}
