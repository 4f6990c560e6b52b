package compose

import (
	"errors"
	"image/color"
	"testing"
)

var blue = color.NRGBA{R: 67, G: 142, B: 219, A: 255}

func policy960(anchor Anchor) Policy {
	return Policy{
		CanvasWidth:  960,
		CanvasHeight: 1280,
		Background:   blue,
		TopMargin:    0.1,
		Anchor:       anchor,
	}
}

func TestSolve_WidthCompensation(t *testing.T) {
	// 400x800: height-driven sizing gives 576x1152, narrower than the canvas.
	pl, err := Solve(400, 800, policy960(BottomAligned))
	if err != nil {
		t.Fatal(err)
	}
	if !pl.Compensated {
		t.Error("expected width compensation")
	}
	if pl.TargetW != 960 || pl.TargetH != 1920 {
		t.Errorf("target: got %dx%d, want 960x1920", pl.TargetW, pl.TargetH)
	}
	if pl.OffsetX != 0 {
		t.Errorf("offsetX: got %d, want 0", pl.OffsetX)
	}
	if pl.OffsetY != 1280-1920 {
		t.Errorf("offsetY: got %d, want %d", pl.OffsetY, 1280-1920)
	}
}

func TestSolve_TopGap(t *testing.T) {
	pl, err := Solve(400, 800, policy960(TopGapThenCenter))
	if err != nil {
		t.Fatal(err)
	}
	if pl.OffsetY != 128 {
		t.Errorf("offsetY: got %d, want 128", pl.OffsetY)
	}
}

func TestSolve_HeightDriven(t *testing.T) {
	// Wide subject: 1152 * 2 = 2304 >= 960, no compensation.
	pl, err := Solve(2000, 1000, policy960(TopGapThenCenter))
	if err != nil {
		t.Fatal(err)
	}
	if pl.Compensated {
		t.Error("unexpected width compensation")
	}
	if pl.TargetH != 1152 || pl.TargetW != 2304 {
		t.Errorf("target: got %dx%d, want 2304x1152", pl.TargetW, pl.TargetH)
	}
	if want := (960 - 2304) / 2; pl.OffsetX != want {
		t.Errorf("offsetX: got %d, want %d", pl.OffsetX, want)
	}
}

func TestSolve_OddOverhangFloors(t *testing.T) {
	p := Policy{CanvasWidth: 10, CanvasHeight: 10, TopMargin: 0}
	// 10 * 1.3 = 13 wide on a 10 wide canvas: -1.5 floors to -2.
	pl, err := Solve(13, 10, p)
	if err != nil {
		t.Fatal(err)
	}
	if pl.TargetW != 13 {
		t.Fatalf("targetW: got %d, want 13", pl.TargetW)
	}
	if pl.OffsetX != -2 {
		t.Errorf("offsetX: got %d, want -2", pl.OffsetX)
	}
}

func TestSolve_CoversWidth(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {3, 1000}, {1000, 3}, {480, 640}, {641, 480}, {17, 29}} {
		pl, err := Solve(size[0], size[1], policy960(TopGapThenCenter))
		if err != nil {
			t.Fatal(err)
		}
		if pl.TargetW < 960 {
			t.Errorf("%dx%d: targetW %d leaves side strips", size[0], size[1], pl.TargetW)
		}
		if pl.OffsetX > 0 {
			t.Errorf("%dx%d: offsetX %d > 0", size[0], size[1], pl.OffsetX)
		}
	}
}

func TestSolve_Invalid(t *testing.T) {
	cases := []struct {
		name string
		p    Policy
		w, h int
		want error
	}{
		{"zero canvas", Policy{CanvasWidth: 0, CanvasHeight: 10}, 1, 1, ErrInvalidPolicy},
		{"negative canvas", Policy{CanvasWidth: 10, CanvasHeight: -1}, 1, 1, ErrInvalidPolicy},
		{"margin one", Policy{CanvasWidth: 10, CanvasHeight: 10, TopMargin: 1}, 1, 1, ErrInvalidPolicy},
		{"negative margin", Policy{CanvasWidth: 10, CanvasHeight: 10, TopMargin: -0.1}, 1, 1, ErrInvalidPolicy},
		{"bad anchor", Policy{CanvasWidth: 10, CanvasHeight: 10, Anchor: 7}, 1, 1, ErrInvalidPolicy},
		{"empty subject", Policy{CanvasWidth: 10, CanvasHeight: 10}, 0, 5, ErrEmptySubject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Solve(tc.w, tc.h, tc.p)
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestParseAnchorAndStrategy(t *testing.T) {
	if a, err := ParseAnchor("bottom"); err != nil || a != BottomAligned {
		t.Errorf("bottom: got %v, %v", a, err)
	}
	if _, err := ParseAnchor("left"); !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("left: got %v", err)
	}
	for in, want := range map[string]Strategy{
		"auto": OracleComposite, "semi": PretrimmedComposite, "format": CenterCropFill,
	} {
		s, err := ParseStrategy(in)
		if err != nil || s != want {
			t.Errorf("%s: got %v, %v", in, s, err)
		}
		if s.String() != in {
			t.Errorf("String(): got %q, want %q", s.String(), in)
		}
	}
}
