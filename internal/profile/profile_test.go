package profile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/idphoto-cli/internal/compose"
	"github.com/AnyUserName/idphoto-cli/internal/encoder"
)

func TestBuiltinsValidate(t *testing.T) {
	for _, name := range Names() {
		p, err := Resolve(name)
		if err != nil {
			t.Errorf("%s: %v", name, err)
		}
		if p.Name != name {
			t.Errorf("%s: name %q", name, p.Name)
		}
	}
}

func TestGetFallback(t *testing.T) {
	p := Get("nope")
	if p.Name != "nope" || p.Width != 480 {
		t.Errorf("got %+v", p)
	}
	if _, err := Resolve("nope"); err == nil {
		t.Error("Resolve accepted an unknown profile")
	}
}

func TestCET960Conversion(t *testing.T) {
	p := Get("cet-960")
	pol, err := p.Policy()
	if err != nil {
		t.Fatal(err)
	}
	if pol.CanvasWidth != 960 || pol.CanvasHeight != 1280 || pol.Anchor != compose.BottomAligned {
		t.Errorf("policy: %+v", pol)
	}
	if pol.Background.R != 67 || pol.Background.G != 142 || pol.Background.B != 219 || pol.Background.A != 255 {
		t.Errorf("background: %v", pol.Background)
	}
	b := p.Budget()
	if b.MinBytes != 51200 || b.MaxBytes != 1048576 || b.DPI != 300 {
		t.Errorf("budget: %+v", b)
	}
	s := p.Search()
	if s.StartQuality != 100 || s.Step != 2 {
		t.Errorf("search: %+v", s)
	}
	if mp := p.MatteParams(); !mp.AlphaMatting || mp.Model != "u2net_human_seg" {
		t.Errorf("matte: %+v", mp)
	}
}

func TestValidateRejects(t *testing.T) {
	p := Get("cet-480")
	p.Quality.Min = 99
	if err := p.Validate(); !errors.Is(err, encoder.ErrInvalidPolicy) {
		t.Errorf("min > start: got %v", err)
	}

	p = Get("cet-480")
	p.MinKB, p.MaxKB = 100, 10
	if err := p.Validate(); !errors.Is(err, encoder.ErrInvalidBudget) {
		t.Errorf("min > max: got %v", err)
	}

	p = Get("cet-480")
	p.Width = 0
	if err := p.Validate(); !errors.Is(err, compose.ErrInvalidPolicy) {
		t.Errorf("zero width: got %v", err)
	}

	p = Get("cet-480")
	p.Anchor = "middle"
	if err := p.Validate(); !errors.Is(err, compose.ErrInvalidPolicy) {
		t.Errorf("anchor: got %v", err)
	}

	p = Get("cet-480")
	p.Matte.Extractor = "magic"
	if err := p.Validate(); err == nil {
		t.Error("unknown extractor accepted")
	}
	p.Mode = "format"
	if err := p.Validate(); err != nil {
		t.Errorf("format mode needs no extractor: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "campus-card.toml")
	src := `
base = "cet-960"
background = [255, 255, 255]
max_kb = 200

[quality]
start = 90
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "campus-card" {
		t.Errorf("name: %q", p.Name)
	}
	if p.Width != 960 || p.DPI != 300 {
		t.Errorf("base fields lost: %dx%d @%d", p.Width, p.Height, p.DPI)
	}
	if p.Background != [3]uint8{255, 255, 255} || p.MaxKB != 200 {
		t.Errorf("overrides: %v %d", p.Background, p.MaxKB)
	}
	if p.Quality.Start != 90 || p.Quality.Step != 2 {
		t.Errorf("quality: %+v", p.Quality)
	}

	p2, err := Resolve(path)
	if err != nil || p2.Name != "campus-card" {
		t.Errorf("resolve: %v %q", err, p2.Name)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	if _, err := LoadFile(write("typo.toml", "widht = 10\n")); err == nil {
		t.Error("unknown key accepted")
	}
	if _, err := LoadFile(write("base.toml", "base = \"nope\"\n")); err == nil {
		t.Error("unknown base accepted")
	}
	if _, err := LoadFile(write("bad.toml", "top_margin = 1.5\n")); !errors.Is(err, compose.ErrInvalidPolicy) {
		t.Errorf("invalid margin: got %v", err)
	}
	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("missing file accepted")
	}
}
