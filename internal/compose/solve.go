package compose

import (
	"fmt"
	"math"
)

// Placement is where and how large the subject lands on the canvas.
// Offsets may be negative: the subject is then clipped by the canvas.
type Placement struct {
	TargetW, TargetH int
	OffsetX, OffsetY int
	// Compensated is set when the height-driven width was narrower than
	// the canvas and the subject was rescaled to full width instead.
	Compensated bool
}

// Solve computes the subject placement for a subjectW x subjectH source.
//
// The subject is first sized to fill the height left under the top
// margin. If that leaves background strips on the left and right, the
// width wins: the subject is scaled to exactly the canvas width, and the
// effective top margin moves accordingly.
func Solve(subjectW, subjectH int, p Policy) (Placement, error) {
	if err := p.Validate(); err != nil {
		return Placement{}, err
	}
	if subjectW <= 0 || subjectH <= 0 {
		return Placement{}, fmt.Errorf("%w: %dx%d", ErrEmptySubject, subjectW, subjectH)
	}

	aspect := float64(subjectW) / float64(subjectH)
	availableH := float64(p.CanvasHeight) * (1 - p.TopMargin)

	var pl Placement
	pl.TargetH = int(math.Floor(availableH))
	pl.TargetW = int(math.Floor(float64(pl.TargetH) * aspect))
	if pl.TargetW < p.CanvasWidth {
		pl.TargetW = p.CanvasWidth
		pl.TargetH = int(math.Floor(float64(pl.TargetW) / aspect))
		pl.Compensated = true
	}
	// Degenerate margins or extreme aspects can floor to zero.
	if pl.TargetH < 1 {
		pl.TargetH = 1
	}
	if pl.TargetW < 1 {
		pl.TargetW = 1
	}

	pl.OffsetX = floorDiv(p.CanvasWidth-pl.TargetW, 2)
	switch p.Anchor {
	case BottomAligned:
		pl.OffsetY = p.CanvasHeight - pl.TargetH
	default:
		pl.OffsetY = int(math.Floor(float64(p.CanvasHeight) * p.TopMargin))
	}
	return pl, nil
}

// floorDiv divides rounding toward negative infinity, so a subject wider
// than the canvas by an odd number of pixels loses the extra column on
// the left, same as the non-negative case rounds down.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
