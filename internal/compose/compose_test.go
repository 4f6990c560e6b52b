package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"testing"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// silhouette draws an opaque, horizontally symmetric ellipse on a
// transparent field.
func silhouette(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx, cy := float64(w)/2, float64(h)/2
	rx, ry := float64(w)/3, float64(h)/2
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			dy := (float64(y) + 0.5 - cy) / ry
			if dx*dx+dy*dy <= 1 {
				img.SetNRGBA(x, y, c)
			}
		}
	}
	return img
}

func assertCanvas(t *testing.T, img *image.NRGBA, w, h int) {
	t.Helper()
	if img.Bounds().Dx() != w || img.Bounds().Dy() != h {
		t.Fatalf("size: got %v, want %dx%d", img.Bounds().Size(), w, h)
	}
	if HasAlpha(img) {
		t.Fatal("output has transparency")
	}
}

func TestCompose_OutputSizeAndOpacity(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 255}
	subjects := []image.Image{
		silhouette(400, 800, red),
		silhouette(900, 300, red),
		solid(50, 50, red),
		image.NewGray(image.Rect(0, 0, 30, 70)),
	}
	for _, anchor := range []Anchor{TopGapThenCenter, BottomAligned} {
		p := Policy{CanvasWidth: 120, CanvasHeight: 160, Background: blue, TopMargin: 0.1, Anchor: anchor}
		for i, s := range subjects {
			out, err := Compose(s, p)
			if err != nil {
				t.Fatalf("subject %d: %v", i, err)
			}
			assertCanvas(t, out, 120, 160)
		}
	}
}

func TestCompose_TopMarginKeepsBackground(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 255}
	p := Policy{CanvasWidth: 48, CanvasHeight: 64, Background: blue, TopMargin: 0.25}
	out, err := Compose(solid(48, 16, red), p) // wide enough: no compensation
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 16; y++ {
		for x := 0; x < 48; x++ {
			if got := out.NRGBAAt(x, y); got != blue {
				t.Fatalf("(%d,%d): got %v, want background", x, y, got)
			}
		}
	}
	if got := out.NRGBAAt(24, 40); got != red {
		t.Errorf("subject pixel: got %v, want %v", got, red)
	}
}

func TestCompose_BottomAlignedTouchesBottom(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 255}
	p := Policy{CanvasWidth: 96, CanvasHeight: 128, Background: blue, TopMargin: 0.1, Anchor: BottomAligned}
	// 40x80 compensates to 96x192 and overhangs the top by 64 rows.
	out, err := Compose(solid(40, 80, red), p)
	if err != nil {
		t.Fatal(err)
	}
	for _, pt := range []image.Point{{0, 0}, {95, 0}, {48, 64}, {0, 127}, {95, 127}} {
		if got := out.NRGBAAt(pt.X, pt.Y); got != red {
			t.Errorf("%v: got %v, want subject", pt, got)
		}
	}
}

func TestCompose_TransparentSubjectShowsBackground(t *testing.T) {
	clear := image.NewNRGBA(image.Rect(0, 0, 30, 40))
	p := Policy{CanvasWidth: 30, CanvasHeight: 40, Background: blue, Strategy: PretrimmedComposite}
	out, err := Compose(clear, p)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 40; y++ {
		for x := 0; x < 30; x++ {
			if got := out.NRGBAAt(x, y); got != blue {
				t.Fatalf("(%d,%d): got %v, want background", x, y, got)
			}
		}
	}
}

func TestCompose_HorizontalSymmetry(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 255}
	p := Policy{CanvasWidth: 60, CanvasHeight: 80, Background: blue, TopMargin: 0.1}
	out, err := Compose(silhouette(60, 90, red), p)
	if err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 80; y++ {
		for x := 0; x < 30; x++ {
			l, r := out.NRGBAAt(x, y), out.NRGBAAt(59-x, y)
			if absDiff(l.R, r.R) > 1 || absDiff(l.G, r.G) > 1 || absDiff(l.B, r.B) > 1 {
				t.Fatalf("row %d: column %d %v vs mirror %v", y, x, l, r)
			}
		}
	}
}

func TestCompose_CenterCropFill(t *testing.T) {
	// Left half black, right half white, centre strip green: after a
	// cover-and-crop onto a square the green strip stays in the middle.
	src := image.NewNRGBA(image.Rect(0, 0, 300, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 300; x++ {
			c := color.NRGBA{A: 255}
			switch {
			case x >= 100 && x < 200:
				c = color.NRGBA{G: 255, A: 255}
			case x >= 200:
				c = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
			}
			src.SetNRGBA(x, y, c)
		}
	}
	p := Policy{CanvasWidth: 50, CanvasHeight: 50, Background: blue, Strategy: CenterCropFill}
	out, err := Compose(src, p)
	if err != nil {
		t.Fatal(err)
	}
	assertCanvas(t, out, 50, 50)
	for _, pt := range []image.Point{{1, 1}, {25, 25}, {48, 48}} {
		if got := out.NRGBAAt(pt.X, pt.Y); got.G < 250 || got.R > 5 || got.B > 5 {
			t.Errorf("%v: got %v, want green", pt, got)
		}
	}
}

func TestCompose_CanvasSizedOpaqueFillsCanvas(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 255}
	for _, s := range []Strategy{OracleComposite, PretrimmedComposite} {
		for _, a := range []Anchor{TopGapThenCenter, BottomAligned} {
			p := Policy{CanvasWidth: 48, CanvasHeight: 64, Background: blue, TopMargin: 0.1, Anchor: a, Strategy: s}
			out, err := Compose(solid(48, 64, red), p)
			if err != nil {
				t.Fatal(err)
			}
			assertCanvas(t, out, 48, 64)
			for y := 0; y < 64; y++ {
				if got := out.NRGBAAt(24, y); got != red {
					t.Fatalf("%s/%s row %d: got %v, want subject", s, a, y, got)
				}
			}
		}
	}
}

func TestCompose_TallSliverResamplesVisibleRows(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 255}
	// 1x4000 compensates to about 96x384000; only the first 116 rows show.
	p := Policy{CanvasWidth: 96, CanvasHeight: 128, Background: blue, TopMargin: 0.1}
	pl, err := Solve(1, 4000, p)
	if err != nil {
		t.Fatal(err)
	}
	if pl.TargetW != 96 || pl.TargetH < 383000 || pl.OffsetY != 12 {
		t.Fatalf("placement: %+v", pl)
	}
	out, err := Compose(solid(1, 4000, red), p)
	if err != nil {
		t.Fatal(err)
	}
	assertCanvas(t, out, 96, 128)
	for y := 0; y < 128; y++ {
		want := red
		if y < 12 {
			want = blue
		}
		for _, x := range []int{0, 48, 95} {
			if got := out.NRGBAAt(x, y); got != want {
				t.Fatalf("(%d,%d): got %v, want %v", x, y, got, want)
			}
		}
	}

	p.Anchor = BottomAligned
	out, err = Compose(solid(1, 4000, red), p)
	if err != nil {
		t.Fatal(err)
	}
	if got := out.NRGBAAt(48, 0); got != red {
		t.Errorf("bottom-aligned top row: got %v, want subject", got)
	}
}

func TestCompose_CenterCropFillFlattensAlpha(t *testing.T) {
	p := Policy{CanvasWidth: 20, CanvasHeight: 20, Background: blue, Strategy: CenterCropFill}
	out, err := Compose(image.NewNRGBA(image.Rect(0, 0, 40, 40)), p)
	if err != nil {
		t.Fatal(err)
	}
	assertCanvas(t, out, 20, 20)
	if got := out.NRGBAAt(10, 10); got != blue {
		t.Errorf("got %v, want background", got)
	}
}

func TestCompose_Deterministic(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 255}
	src := silhouette(123, 217, red)
	p := Policy{CanvasWidth: 48, CanvasHeight: 64, Background: blue, TopMargin: 0.1}
	a, err := Compose(src, p)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compose(src, p)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Error("two runs produced different pixels")
	}
}

func TestCompose_DoesNotMutateSubject(t *testing.T) {
	red := color.NRGBA{R: 200, G: 20, B: 20, A: 128}
	src := solid(10, 20, red)
	before := append([]byte(nil), src.Pix...)
	if _, err := Compose(src, Policy{CanvasWidth: 8, CanvasHeight: 8, Background: blue}); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(before, src.Pix) {
		t.Error("subject pixels changed")
	}
}

func TestCompose_Errors(t *testing.T) {
	_, err := Compose(image.NewNRGBA(image.Rect(0, 0, 0, 10)), Policy{CanvasWidth: 8, CanvasHeight: 8})
	if !errors.Is(err, ErrEmptySubject) {
		t.Errorf("empty subject: got %v", err)
	}
	_, err = Compose(solid(4, 4, blue), Policy{CanvasWidth: 8})
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Errorf("zero height: got %v", err)
	}
}

func TestHasAlpha_SubImage(t *testing.T) {
	img := solid(8, 8, blue)
	img.SetNRGBA(7, 7, color.NRGBA{A: 0})
	if HasAlpha(img.SubImage(image.Rect(0, 0, 4, 4))) {
		t.Error("opaque sub-image reported alpha")
	}
	if !HasAlpha(img) {
		t.Error("transparent pixel not detected")
	}
}

func absDiff(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
