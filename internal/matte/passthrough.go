package matte

import (
	"context"
	"fmt"
	"image"
)

// Passthrough returns its input unchanged. It stands in for an extractor
// when the source already carries transparency.
type Passthrough struct{}

func (Passthrough) Name() string { return "none" }

func (Passthrough) Extract(_ context.Context, img image.Image, _ Params) (image.Image, error) {
	return img, nil
}

// ByName returns the extractor a profile or flag refers to.
func ByName(name string) (Extractor, error) {
	switch name {
	case "rembg", "":
		return &Command{}, nil
	case "keycolor":
		return NewKeyColor(), nil
	case "none":
		return Passthrough{}, nil
	}
	return nil, fmt.Errorf("matte: unknown extractor %q (want rembg, keycolor or none)", name)
}
