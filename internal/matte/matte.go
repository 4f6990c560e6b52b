// Package matte isolates a portrait subject from its background.
//
// An Extractor returns the subject with a per-pixel opacity channel. The
// compose step treats it as a black box; this package only adapts the
// available backends to one interface.
package matte

import (
	"context"
	"errors"
	"image"
)

// ErrUnavailable is returned when a backend is not installed.
var ErrUnavailable = errors.New("matte: extractor unavailable")

// Params tunes an extraction. Backends ignore fields they don't support.
type Params struct {
	// Model names the segmentation model (rembg: u2net, u2net_human_seg,
	// isnet-general-use, ...).
	Model string

	// AlphaMatting refines the mask edge using a trimap built from the
	// thresholds below.
	AlphaMatting        bool
	ForegroundThreshold int
	BackgroundThreshold int
	ErodeSize           int
}

// DefaultParams mirrors rembg's command-line defaults.
func DefaultParams() Params {
	return Params{
		Model:               "u2net",
		ForegroundThreshold: 240,
		BackgroundThreshold: 10,
		ErodeSize:           10,
	}
}

// Extractor cuts the subject out of img. The result has the same size as
// img or a size derived from it, with background opacity near zero.
// Implementations must be safe for concurrent use.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, img image.Image, p Params) (image.Image, error)
}
