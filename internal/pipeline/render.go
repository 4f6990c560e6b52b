package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/AnyUserName/idphoto-cli/internal/compose"
	"github.com/AnyUserName/idphoto-cli/internal/encoder"
	"github.com/AnyUserName/idphoto-cli/internal/matte"
	"github.com/AnyUserName/idphoto-cli/internal/profile"
)

// ErrNoExtractor is returned when a profile needs foreground extraction
// but none was configured.
var ErrNoExtractor = errors.New("pipeline: auto mode needs a foreground extractor")

// Portraits are JPEG so they carry a JFIF density tag. Cut-outs keep
// their alpha channel as PNG.
const (
	PortraitFormat = "jpeg"
	CutoutFormat   = "png"
)

// Rendered is a finished portrait and the intermediates that produced it.
type Rendered struct {
	// Subject is what was composited: the extractor's cut-out, the
	// pretrimmed input, or the raw input for format-only mode.
	Subject  image.Image
	Portrait *image.NRGBA
	Artifact encoder.Artifact
	Strategy compose.Strategy
	// Encoder produced Artifact; its Extension names the output file.
	Encoder encoder.Encoder
}

// Render turns one decoded image into an encoded portrait under prof.
// Extraction errors are returned as-is (wrapped) and never retried.
func Render(ctx context.Context, img image.Image, prof profile.Profile, ext matte.Extractor) (*Rendered, error) {
	pol, err := prof.Policy()
	if err != nil {
		return nil, err
	}

	subject := img
	switch pol.Strategy {
	case compose.OracleComposite:
		if ext == nil {
			return nil, ErrNoExtractor
		}
		subject, err = ext.Extract(ctx, img, prof.MatteParams())
		if err != nil {
			return nil, fmt.Errorf("extract foreground (%s): %w", ext.Name(), err)
		}
	case compose.PretrimmedComposite, compose.CenterCropFill:
		// Used as-is.
	}

	portrait, err := compose.Compose(subject, pol)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	enc, err := encoder.ForFormat(PortraitFormat)
	if err != nil {
		return nil, err
	}
	art, err := encoder.Search(enc, portrait, prof.Budget(), prof.Search())
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return &Rendered{
		Subject:  subject,
		Portrait: portrait,
		Artifact: art,
		Strategy: pol.Strategy,
		Encoder:  enc,
	}, nil
}
