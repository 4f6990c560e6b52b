// Package compose lays a portrait subject out on a fixed-size canvas with
// a solid background color.
package compose

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Compose renders subject onto a new canvas according to p.
//
// The result is always exactly CanvasWidth x CanvasHeight and fully
// opaque. subject is never modified.
func Compose(subject image.Image, p Policy) (*image.NRGBA, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := subject.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, ErrEmptySubject
	}

	if p.Strategy == CenterCropFill {
		return fill(subject, p), nil
	}
	// A pre-formatted photo has nothing to separate: cover, don't place.
	if b.Dx() == p.CanvasWidth && b.Dy() == p.CanvasHeight && !HasAlpha(subject) {
		return fill(subject, p), nil
	}

	pl, err := Solve(b.Dx(), b.Dy(), p)
	if err != nil {
		return nil, err
	}

	canvas := imaging.New(p.CanvasWidth, p.CanvasHeight, opaque(p))
	resized, pos := place(subject, pl, p)
	if resized == nil {
		return canvas, nil
	}

	if !HasAlpha(subject) {
		return imaging.Paste(canvas, resized, pos), nil
	}
	return imaging.Overlay(canvas, resized, pos, 1.0), nil
}

// maxOverscan bounds the resized subject, in canvas areas. Beyond it
// only the part of the source that lands on the canvas is resampled.
const maxOverscan = 4

// place resizes subject to pl and returns it with its top-left corner on
// the canvas. A nil image means nothing of the subject is visible.
func place(subject image.Image, pl Placement, p Policy) (*image.NRGBA, image.Point) {
	full := image.Rect(pl.OffsetX, pl.OffsetY, pl.OffsetX+pl.TargetW, pl.OffsetY+pl.TargetH)
	area := int64(pl.TargetW) * int64(pl.TargetH)
	if area <= maxOverscan*int64(p.CanvasWidth)*int64(p.CanvasHeight) {
		return imaging.Resize(subject, pl.TargetW, pl.TargetH, imaging.Lanczos), full.Min
	}

	vis := full.Intersect(image.Rect(0, 0, p.CanvasWidth, p.CanvasHeight))
	if vis.Empty() {
		return nil, image.Point{}
	}
	b := subject.Bounds()
	src := image.Rect(
		b.Min.X+scaleDown(vis.Min.X-full.Min.X, b.Dx(), pl.TargetW),
		b.Min.Y+scaleDown(vis.Min.Y-full.Min.Y, b.Dy(), pl.TargetH),
		b.Min.X+scaleUp(vis.Max.X-full.Min.X, b.Dx(), pl.TargetW),
		b.Min.Y+scaleUp(vis.Max.Y-full.Min.Y, b.Dy(), pl.TargetH),
	)
	crop := imaging.Crop(subject, src)
	return imaging.Resize(crop, vis.Dx(), vis.Dy(), imaging.Lanczos), vis.Min
}

// scaleDown maps target coordinate v back to the source, rounding down.
func scaleDown(v, src, target int) int {
	return int(int64(v) * int64(src) / int64(target))
}

// scaleUp is scaleDown rounding up, so a visible edge keeps at least one
// source pixel.
func scaleUp(v, src, target int) int {
	n := int64(v) * int64(src)
	r := int(n / int64(target))
	if n%int64(target) != 0 {
		r++
	}
	return max(r, 1)
}

// fill scales src uniformly until it covers the canvas on both axes and
// crops the excess symmetrically. Any transparency is flattened onto the
// background color so the output stays opaque.
func fill(src image.Image, p Policy) *image.NRGBA {
	filled := imaging.Fill(src, p.CanvasWidth, p.CanvasHeight, imaging.Center, imaging.Lanczos)
	if !HasAlpha(filled) {
		return filled
	}
	canvas := imaging.New(p.CanvasWidth, p.CanvasHeight, opaque(p))
	return imaging.Overlay(canvas, filled, image.Pt(0, 0), 1.0)
}

func opaque(p Policy) color.NRGBA {
	c := p.Background
	c.A = 0xff
	return c
}
