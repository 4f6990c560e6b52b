package compose

import (
	"errors"
	"fmt"
	"image/color"
	"math"
)

// Sentinel errors. Both are contract violations: callers should check
// their inputs rather than retry.
var (
	ErrInvalidPolicy = errors.New("compose: invalid policy")
	ErrEmptySubject  = errors.New("compose: subject has zero width or height")
)

// Anchor selects how the resized subject is placed vertically.
type Anchor int

const (
	// TopGapThenCenter leaves TopMargin of the canvas height empty above
	// the subject.
	TopGapThenCenter Anchor = iota
	// BottomAligned puts the subject's bottom edge on the canvas bottom
	// edge, regardless of TopMargin.
	BottomAligned
)

func (a Anchor) String() string {
	switch a {
	case TopGapThenCenter:
		return "top-gap"
	case BottomAligned:
		return "bottom"
	default:
		return fmt.Sprintf("anchor(%d)", int(a))
	}
}

// ParseAnchor maps a profile/flag value to an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch s {
	case "top-gap", "top", "":
		return TopGapThenCenter, nil
	case "bottom":
		return BottomAligned, nil
	}
	return 0, fmt.Errorf("%w: unknown anchor %q (want top-gap or bottom)", ErrInvalidPolicy, s)
}

// Strategy is the composition mode, chosen once per photo.
type Strategy int

const (
	// OracleComposite composites a subject cut out by a foreground
	// extractor onto the background.
	OracleComposite Strategy = iota
	// PretrimmedComposite composites a subject that already carries
	// transparency (a user-supplied cut-out).
	PretrimmedComposite
	// CenterCropFill scales the source to cover the canvas and crops the
	// excess from the center. The background color never shows.
	CenterCropFill
)

func (s Strategy) String() string {
	switch s {
	case OracleComposite:
		return "auto"
	case PretrimmedComposite:
		return "semi"
	case CenterCropFill:
		return "format"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy accepts the mode names used in profiles and on the
// command line.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "auto", "":
		return OracleComposite, nil
	case "semi", "pretrimmed":
		return PretrimmedComposite, nil
	case "format", "crop":
		return CenterCropFill, nil
	}
	return 0, fmt.Errorf("%w: unknown mode %q (want auto, semi or format)", ErrInvalidPolicy, s)
}

// Composite reports whether the strategy places a subject over a
// background color.
func (s Strategy) Composite() bool {
	return s == OracleComposite || s == PretrimmedComposite
}

// DefaultTopMargin is the fraction of the canvas height kept empty above
// the subject.
const DefaultTopMargin = 0.1

// Policy describes the target canvas and how a subject is laid out on it.
type Policy struct {
	CanvasWidth  int
	CanvasHeight int
	Background   color.NRGBA
	TopMargin    float64
	Anchor       Anchor
	Strategy     Strategy
}

// Validate rejects policies no subject can be composed with.
func (p Policy) Validate() error {
	if p.CanvasWidth <= 0 || p.CanvasHeight <= 0 {
		return fmt.Errorf("%w: canvas %dx%d must be positive", ErrInvalidPolicy, p.CanvasWidth, p.CanvasHeight)
	}
	if math.IsNaN(p.TopMargin) || p.TopMargin < 0 || p.TopMargin >= 1 {
		return fmt.Errorf("%w: top margin %v must be in [0, 1)", ErrInvalidPolicy, p.TopMargin)
	}
	if p.Anchor != TopGapThenCenter && p.Anchor != BottomAligned {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, p.Anchor)
	}
	if p.Strategy < OracleComposite || p.Strategy > CenterCropFill {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, p.Strategy)
	}
	return nil
}
