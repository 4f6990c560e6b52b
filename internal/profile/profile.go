package profile

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/AnyUserName/idphoto-cli/internal/compose"
	"github.com/AnyUserName/idphoto-cli/internal/encoder"
	"github.com/AnyUserName/idphoto-cli/internal/matte"
)

// Profile bundles every parameter needed to turn an upload into a
// compliant portrait for one submission system.
type Profile struct {
	Name        string `toml:"name"`
	Description string `toml:"description"`

	Width      int      `toml:"width"`  // canvas width in pixels
	Height     int      `toml:"height"` // canvas height in pixels
	Background [3]uint8 `toml:"background"`
	TopMargin  float64  `toml:"top_margin"` // fraction of height kept empty above the subject
	Anchor     string   `toml:"anchor"`     // "top-gap" or "bottom"
	Mode       string   `toml:"mode"`       // "auto", "semi" or "format"

	DPI   int `toml:"dpi"`
	MinKB int `toml:"min_kb"`
	MaxKB int `toml:"max_kb"`

	Quality QualityConfig `toml:"quality"`
	Matte   MatteConfig   `toml:"matte"`
}

// QualityConfig is the quality search section of a profile.
type QualityConfig struct {
	Start         int     `toml:"start"`
	Min           int     `toml:"min"`
	Step          int     `toml:"step"`
	TopBand       int     `toml:"top_band"`
	FloorFraction float64 `toml:"floor_fraction"`
}

// MatteConfig selects and tunes the foreground extractor.
type MatteConfig struct {
	Extractor           string `toml:"extractor"` // "rembg", "keycolor" or "none"
	Model               string `toml:"model"`
	AlphaMatting        bool   `toml:"alpha_matting"`
	ForegroundThreshold int    `toml:"foreground_threshold"`
	BackgroundThreshold int    `toml:"background_threshold"`
	ErodeSize           int    `toml:"erode_size"`
}

// CET background blue, RGB 67/142/219.
var cetBlue = [3]uint8{67, 142, 219}

// Built-in profiles.
var profiles = map[string]Profile{
	"cet-480": {
		Name:        "cet-480",
		Description: "English exam registration photo, 3:4, blue, 180 DPI, 50-1024 KB",
		Width:       480,
		Height:      640,
		Background:  cetBlue,
		TopMargin:   0.1,
		Anchor:      "top-gap",
		Mode:        "auto",
		DPI:         180,
		MinKB:       50,
		MaxKB:       1024,
		Quality:     QualityConfig{Start: 95, Min: 15, Step: 5, TopBand: 90, FloorFraction: 0.3},
		Matte:       MatteConfig{Extractor: "rembg", Model: "u2net_human_seg"},
	},
	"cet-960": {
		Name:        "cet-960",
		Description: "English exam registration photo, 3:4, blue, 300 DPI, 50-1024 KB",
		Width:       960,
		Height:      1280,
		Background:  cetBlue,
		TopMargin:   0.1,
		Anchor:      "bottom",
		Mode:        "auto",
		DPI:         300,
		MinKB:       50,
		MaxKB:       1024,
		Quality:     QualityConfig{Start: 100, Min: 10, Step: 2, TopBand: 95, FloorFraction: 0.4},
		Matte: MatteConfig{
			Extractor:           "rembg",
			Model:               "u2net_human_seg",
			AlphaMatting:        true,
			ForegroundThreshold: 240,
			BackgroundThreshold: 10,
			ErodeSize:           10,
		},
	},
	"passport-white": {
		Name:        "passport-white",
		Description: "Generic passport photo, 35x45 mm at 300 DPI, white, up to 240 KB",
		Width:       413,
		Height:      531,
		Background:  [3]uint8{255, 255, 255},
		TopMargin:   0.1,
		Anchor:      "bottom",
		Mode:        "auto",
		DPI:         300,
		MinKB:       10,
		MaxKB:       240,
		Quality:     QualityConfig{Start: 95, Min: 30, Step: 5, TopBand: 90, FloorFraction: 0.4},
		Matte:       MatteConfig{Extractor: "rembg", Model: "u2net_human_seg"},
	},
}

// DefaultName is used when no profile is requested.
const DefaultName = "cet-480"

// Get returns a profile by name. Falls back to cet-480 if unknown.
func Get(name string) Profile {
	if p, ok := profiles[name]; ok {
		return p
	}
	p := profiles[DefaultName]
	p.Name = name // preserve requested name
	return p
}

// Lookup is Get without the fallback.
func Lookup(name string) (Profile, bool) {
	p, ok := profiles[name]
	return p, ok
}

// Names lists the built-in profiles in sorted order.
func Names() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// BackgroundColor returns the canvas color.
func (p Profile) BackgroundColor() color.NRGBA {
	return color.NRGBA{R: p.Background[0], G: p.Background[1], B: p.Background[2], A: 0xff}
}

// Policy converts the layout fields into a compose policy.
func (p Profile) Policy() (compose.Policy, error) {
	anchor, err := compose.ParseAnchor(p.Anchor)
	if err != nil {
		return compose.Policy{}, err
	}
	strategy, err := compose.ParseStrategy(p.Mode)
	if err != nil {
		return compose.Policy{}, err
	}
	return compose.Policy{
		CanvasWidth:  p.Width,
		CanvasHeight: p.Height,
		Background:   p.BackgroundColor(),
		TopMargin:    p.TopMargin,
		Anchor:       anchor,
		Strategy:     strategy,
	}, nil
}

// Budget returns the byte window and DPI tag.
func (p Profile) Budget() encoder.Budget {
	return encoder.Budget{MinBytes: p.MinKB * 1024, MaxBytes: p.MaxKB * 1024, DPI: p.DPI}
}

// Search returns the quality search policy.
func (p Profile) Search() encoder.SearchPolicy {
	return encoder.SearchPolicy{
		StartQuality:  p.Quality.Start,
		MinQuality:    p.Quality.Min,
		Step:          p.Quality.Step,
		TopBand:       p.Quality.TopBand,
		FloorFraction: p.Quality.FloorFraction,
	}
}

// MatteParams returns the extraction parameters.
func (p Profile) MatteParams() matte.Params {
	mp := matte.DefaultParams()
	if p.Matte.Model != "" {
		mp.Model = p.Matte.Model
	}
	mp.AlphaMatting = p.Matte.AlphaMatting
	if p.Matte.ForegroundThreshold > 0 {
		mp.ForegroundThreshold = p.Matte.ForegroundThreshold
	}
	if p.Matte.BackgroundThreshold > 0 {
		mp.BackgroundThreshold = p.Matte.BackgroundThreshold
	}
	if p.Matte.ErodeSize > 0 {
		mp.ErodeSize = p.Matte.ErodeSize
	}
	return mp
}

// Validate checks every section, so a bad profile fails before any image
// is decoded.
func (p Profile) Validate() error {
	pol, err := p.Policy()
	if err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if err := pol.Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if err := p.Budget().Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if err := p.Search().Validate(); err != nil {
		return fmt.Errorf("profile %q: %w", p.Name, err)
	}
	if pol.Strategy == compose.OracleComposite {
		if _, err := matte.ByName(p.Matte.Extractor); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}
	return nil
}
