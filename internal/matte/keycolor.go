package matte

import (
	"context"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"
)

// KeyColor separates a subject photographed against a near-uniform
// backdrop by color distance from the backdrop. It needs no model and is
// deterministic, at the cost of failing on busy backgrounds.
type KeyColor struct {
	// Key is the backdrop color. When zero it is estimated from the
	// image border.
	Key color.NRGBA

	// Pixels closer than Inner to the key become fully transparent;
	// pixels farther than Outer stay opaque. In between, opacity ramps
	// linearly. Distances are Euclidean in 8-bit RGB.
	Inner, Outer float64
}

// NewKeyColor returns a KeyColor with border-estimated key and default
// thresholds.
func NewKeyColor() *KeyColor {
	return &KeyColor{Inner: 24, Outer: 64}
}

func (k *KeyColor) Name() string { return "keycolor" }

// Extract ignores the model fields of p. With AlphaMatting off the ramp
// collapses to a hard threshold at the midpoint.
func (k *KeyColor) Extract(ctx context.Context, img image.Image, p Params) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := imaging.Clone(img)
	key := k.Key
	if key == (color.NRGBA{}) {
		key = BorderColor(src)
	}

	inner, outer := k.Inner, k.Outer
	if outer <= inner {
		outer = inner + 1
	}
	if !p.AlphaMatting {
		mid := (inner + outer) / 2
		inner, outer = mid, mid
	}

	b := src.Bounds()
	for y := 0; y < b.Dy(); y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		for i := 0; i < len(row); i += 4 {
			d := distance(row[i], row[i+1], row[i+2], key)
			row[i+3] = uint8(float64(row[i+3]) * ramp(d, inner, outer))
		}
	}
	return src, nil
}

// BorderColor averages the outermost ring of pixels, where a backdrop is
// most likely to show.
func BorderColor(img *image.NRGBA) color.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return color.NRGBA{}
	}
	var r, g, bl, n uint64
	add := func(x, y int) {
		c := img.NRGBAAt(b.Min.X+x, b.Min.Y+y)
		r += uint64(c.R)
		g += uint64(c.G)
		bl += uint64(c.B)
		n++
	}
	for x := 0; x < w; x++ {
		add(x, 0)
		if h > 1 {
			add(x, h-1)
		}
	}
	for y := 1; y < h-1; y++ {
		add(0, y)
		if w > 1 {
			add(w-1, y)
		}
	}
	return color.NRGBA{R: uint8(r / n), G: uint8(g / n), B: uint8(bl / n), A: 0xff}
}

func distance(r, g, b uint8, key color.NRGBA) float64 {
	dr := float64(r) - float64(key.R)
	dg := float64(g) - float64(key.G)
	db := float64(b) - float64(key.B)
	return math.Sqrt(dr*dr + dg*dg + db*db)
}

// ramp maps a distance to an opacity factor in [0, 1]. Equal bounds make
// a hard threshold.
func ramp(d, inner, outer float64) float64 {
	switch {
	case inner == outer:
		if d < inner {
			return 0
		}
		return 1
	case d <= inner:
		return 0
	case d >= outer:
		return 1
	}
	return (d - inner) / (outer - inner)
}
