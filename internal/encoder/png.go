package encoder

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/png"
	"math"
)

// PNGEncoder encodes images to PNG using Go's standard library.
// Used for the intermediate cut-out, which needs its alpha channel.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }

// Encode ignores quality. A positive dpi is written as a pHYs chunk.
func (e *PNGEncoder) Encode(img image.Image, _, dpi int) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(512 * 1024)

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	if dpi <= 0 {
		return buf.Bytes(), nil
	}
	return withPHYs(buf.Bytes(), dpi), nil
}

// pngHeaderEnd is the offset just past the signature and IHDR chunk,
// which the standard encoder always writes first.
const pngHeaderEnd = 8 + 4 + 4 + 13 + 4

// withPHYs inserts a pHYs chunk after IHDR declaring dpi in pixels per
// metre.
func withPHYs(data []byte, dpi int) []byte {
	ppm := uint32(math.Round(float64(dpi) / 0.0254))

	chunk := make([]byte, 4+4+9+4)
	binary.BigEndian.PutUint32(chunk[0:], 9)
	copy(chunk[4:], "pHYs")
	binary.BigEndian.PutUint32(chunk[8:], ppm)
	binary.BigEndian.PutUint32(chunk[12:], ppm)
	chunk[16] = 1 // unit: metre
	binary.BigEndian.PutUint32(chunk[17:], crc32.ChecksumIEEE(chunk[4:17]))

	out := make([]byte, 0, len(data)+len(chunk))
	out = append(out, data[:pngHeaderEnd]...)
	out = append(out, chunk...)
	out = append(out, data[pngHeaderEnd:]...)
	return out
}
