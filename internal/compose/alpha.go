package compose

import "image"

// HasAlpha reports whether any pixel of img is not fully opaque.
// Formats without an alpha channel short-circuit to false.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		return anyBelow(src.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy())
	case *image.RGBA:
		return anyBelow(src.Pix, src.Stride, src.Rect.Dx(), src.Rect.Dy())
	case *image.YCbCr, *image.Gray, *image.Gray16, *image.CMYK:
		return false
	case interface{ Opaque() bool }:
		return !src.Opaque()
	default:
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				if _, _, _, a := img.At(x, y).RGBA(); a < 0xffff {
					return true
				}
			}
		}
		return false
	}
}

// anyBelow scans the alpha byte of each 4-byte pixel row by row. Sub-image
// Pix slices run past the rectangle, so rows and columns are bounded.
func anyBelow(pix []byte, stride, w, h int) bool {
	for y := 0; y < h; y++ {
		row := pix[y*stride : y*stride+w*4]
		for i := 3; i < len(row); i += 4 {
			if row[i] < 0xff {
				return true
			}
		}
	}
	return false
}
