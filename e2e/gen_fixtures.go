//go:build ignore

// gen_fixtures creates small portrait images for the E2E smoke test.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
)

var (
	backdrop = color.NRGBA{R: 200, G: 200, B: 200, A: 255}
	shirt    = color.NRGBA{R: 30, G: 40, B: 90, A: 255}
	skin     = color.NRGBA{R: 224, G: 180, B: 150, A: 255}
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	os.MkdirAll(filepath.Join(dir, "class-a"), 0o755)

	// Phone shots on a plain grey wall (JPEG, 3:4).
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("student-%d.jpg", i)
		writeJPEG(filepath.Join(dir, "class-a", name), portrait(600, 800, backdrop, i*8))
	}

	// A cut-out someone already removed the background from.
	writePNG(filepath.Join(dir, "cutout.png"), portrait(400, 800, color.NRGBA{}, 0))

	// Landscape shot, exercises the width-driven scale.
	writeJPEG(filepath.Join(dir, "wide.jpg"), portrait(1000, 600, backdrop, 0))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 5 fixtures in %s\n", dir)
}

// portrait draws a head and shoulders silhouette on bg, shifted right by
// shift pixels.
func portrait(w, h int, bg color.NRGBA, shift int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	cx := w/2 + shift
	headR := min(w, h) / 6
	headY := h * 2 / 5
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := bg
			dx, dy := x-cx, y-headY
			switch {
			case dx*dx+dy*dy <= headR*headR:
				c = skin
			case y > headY+headR && abs(dx) < headR*2+(y-headY-headR)/2:
				c = shirt
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func writeJPEG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	jpeg.Encode(f, img, &jpeg.Options{Quality: 92})
}

func writePNG(path string, img image.Image) {
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()
	png.Encode(f, img)
}
