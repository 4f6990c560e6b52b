package encoder

import (
	"errors"
	"fmt"
	"image"
	"math"
)

var (
	ErrInvalidBudget = errors.New("encoder: invalid size budget")
	ErrInvalidPolicy = errors.New("encoder: invalid quality search policy")
)

// Budget is the byte-size window an encoded portrait should land in,
// plus the print resolution stamped into it. MaxBytes is the only bound
// the search protects; MinBytes is advisory.
type Budget struct {
	MinBytes int
	MaxBytes int
	DPI      int
}

func (b Budget) Validate() error {
	if b.MinBytes < 0 || b.MaxBytes < 0 {
		return fmt.Errorf("%w: negative bound (min=%d, max=%d)", ErrInvalidBudget, b.MinBytes, b.MaxBytes)
	}
	if b.MinBytes > b.MaxBytes {
		return fmt.Errorf("%w: min %d > max %d", ErrInvalidBudget, b.MinBytes, b.MaxBytes)
	}
	if b.DPI <= 0 || b.DPI > math.MaxUint16 {
		return fmt.Errorf("%w: dpi %d", ErrInvalidBudget, b.DPI)
	}
	return nil
}

// SearchPolicy drives the descending quality search. Profiles differ
// only in these values.
type SearchPolicy struct {
	StartQuality int
	MinQuality   int
	Step         int

	// TopBand is the lowest quality still considered near-lossless. A fit
	// at or above it whose size reaches FloorFraction of MaxBytes is
	// reported as good enough. Zero disables the rule.
	TopBand       int
	FloorFraction float64
}

func (p SearchPolicy) Validate() error {
	switch {
	case p.StartQuality < 1 || p.StartQuality > 100:
		return fmt.Errorf("%w: start quality %d", ErrInvalidPolicy, p.StartQuality)
	case p.MinQuality < 1 || p.MinQuality > p.StartQuality:
		return fmt.Errorf("%w: min quality %d (start %d)", ErrInvalidPolicy, p.MinQuality, p.StartQuality)
	case p.Step < 1:
		return fmt.Errorf("%w: step %d", ErrInvalidPolicy, p.Step)
	case p.TopBand < 0 || p.TopBand > 100:
		return fmt.Errorf("%w: top band %d", ErrInvalidPolicy, p.TopBand)
	case math.IsNaN(p.FloorFraction) || p.FloorFraction < 0 || p.FloorFraction > 1:
		return fmt.Errorf("%w: floor fraction %v", ErrInvalidPolicy, p.FloorFraction)
	}
	return nil
}

// MaxAttempts is the most encodes Search can perform under p.
func (p SearchPolicy) MaxAttempts() int {
	return (p.StartQuality-p.MinQuality+p.Step-1)/p.Step + 1
}

// ExitReason records why the search stopped.
type ExitReason string

const (
	// ExitGoodEnough: the fit is in the top quality band and already a
	// meaningful share of the budget.
	ExitGoodEnough ExitReason = "good-enough"
	// ExitCeiling: the starting quality fit, nothing higher to try.
	ExitCeiling ExitReason = "ceiling"
	// ExitFirstFit: the first quality that fit after stepping down.
	ExitFirstFit ExitReason = "first-fit"
	// ExitExhausted: even MinQuality overflowed MaxBytes; the MinQuality
	// encoding is returned as best effort.
	ExitExhausted ExitReason = "exhausted"
)

// Attempt is one probe of the search.
type Attempt struct {
	Quality int
	Size    int
}

// Artifact is the encoding the search settled on.
type Artifact struct {
	Data    []byte
	Quality int
	Size    int
	DPI     int

	Exit     ExitReason
	Attempts []Attempt

	// WithinBudget is false only for ExitExhausted.
	WithinBudget bool
	// UnderMin is set when the result is smaller than MinBytes.
	UnderMin bool
}

// Search encodes img at descending qualities until the output fits
// b.MaxBytes, and returns the first fit.
//
// Size is assumed non-decreasing in quality, so once a quality fits no
// lower one is tried, even when the result is far under MinBytes. When
// nothing fits, the MinQuality encoding is returned with
// WithinBudget=false rather than an error.
func Search(enc Encoder, img image.Image, b Budget, p SearchPolicy) (Artifact, error) {
	if err := b.Validate(); err != nil {
		return Artifact{}, err
	}
	if err := p.Validate(); err != nil {
		return Artifact{}, err
	}

	var (
		attempts []Attempt
		last     []byte
		q        = p.StartQuality
	)
	for {
		data, err := enc.Encode(img, q, b.DPI)
		if err != nil {
			return Artifact{}, fmt.Errorf("encode %s at quality %d: %w", enc.Format(), q, err)
		}
		size := len(data)
		attempts = append(attempts, Attempt{Quality: q, Size: size})
		last = data

		if size <= b.MaxBytes {
			return Artifact{
				Data:         data,
				Quality:      q,
				Size:         size,
				DPI:          b.DPI,
				Exit:         exitFor(q, size, b, p),
				Attempts:     attempts,
				WithinBudget: true,
				UnderMin:     size < b.MinBytes,
			}, nil
		}

		if q == p.MinQuality {
			break
		}
		q -= p.Step
		if q < p.MinQuality {
			q = p.MinQuality
		}
	}

	return Artifact{
		Data:     last,
		Quality:  p.MinQuality,
		Size:     len(last),
		DPI:      b.DPI,
		Exit:     ExitExhausted,
		Attempts: attempts,
		UnderMin: len(last) < b.MinBytes,
	}, nil
}

func exitFor(q, size int, b Budget, p SearchPolicy) ExitReason {
	floor := int(math.Ceil(p.FloorFraction * float64(b.MaxBytes)))
	switch {
	case p.TopBand > 0 && q >= p.TopBand && size >= floor:
		return ExitGoodEnough
	case q == p.StartQuality:
		return ExitCeiling
	default:
		return ExitFirstFit
	}
}
