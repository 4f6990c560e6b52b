package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/AnyUserName/idphoto-cli/internal/matte"
	"github.com/AnyUserName/idphoto-cli/internal/profile"
	"github.com/spf13/cobra"
)

// profileFlags are the per-run overrides shared by build and make.
type profileFlags struct {
	name         string
	mode         string
	anchor       string
	background   string
	topMargin    float64
	dpi          int
	minKB        int
	maxKB        int
	quality      int
	minQuality   int
	step         int
	extractor    string
	rembgPath    string
	model        string
	alphaMatting bool
}

func (f *profileFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVarP(&f.name, "profile", "p", profile.DefaultName, "profile name or path to a .toml profile")
	fs.StringVarP(&f.mode, "mode", "m", "", "auto (remove background), semi (input is a cut-out) or format (crop only)")
	fs.StringVar(&f.anchor, "anchor", "", "vertical placement: top-gap or bottom")
	fs.StringVar(&f.background, "background", "", "background color as R,G,B or #RRGGBB")
	fs.Float64Var(&f.topMargin, "top-margin", 0, "fraction of the height left empty above the subject")
	fs.IntVar(&f.dpi, "dpi", 0, "print resolution tag")
	fs.IntVar(&f.minKB, "min-kb", 0, "minimum output size in KB (advisory)")
	fs.IntVar(&f.maxKB, "max-kb", 0, "maximum output size in KB")
	fs.IntVarP(&f.quality, "quality", "q", 0, "starting JPEG quality 1-100")
	fs.IntVar(&f.minQuality, "min-quality", 0, "lowest JPEG quality the search may use")
	fs.IntVar(&f.step, "step", 0, "quality decrement per search step")
	fs.StringVarP(&f.extractor, "extractor", "e", "", "background remover: rembg, keycolor or none")
	fs.StringVar(&f.rembgPath, "rembg-path", "", "rembg binary (default: looked up in PATH)")
	fs.StringVar(&f.model, "model", "", "rembg model name")
	fs.BoolVar(&f.alphaMatting, "alpha-matting", false, "refine the mask edge with alpha matting")
}

// resolve loads the named profile and applies only the flags the user set.
func (f *profileFlags) resolve(cmd *cobra.Command) (profile.Profile, error) {
	prof, err := profile.Resolve(f.name)
	if err != nil {
		return profile.Profile{}, err
	}

	changed := cmd.Flags().Changed
	if changed("mode") {
		prof.Mode = f.mode
	}
	if changed("anchor") {
		prof.Anchor = f.anchor
	}
	if changed("background") {
		bg, err := parseColor(f.background)
		if err != nil {
			return profile.Profile{}, err
		}
		prof.Background = bg
	}
	if changed("top-margin") {
		prof.TopMargin = f.topMargin
	}
	if changed("dpi") {
		prof.DPI = f.dpi
	}
	if changed("min-kb") {
		prof.MinKB = f.minKB
	}
	if changed("max-kb") {
		prof.MaxKB = f.maxKB
	}
	if changed("quality") {
		prof.Quality.Start = f.quality
	}
	if changed("min-quality") {
		prof.Quality.Min = f.minQuality
	}
	if changed("step") {
		prof.Quality.Step = f.step
	}
	if changed("extractor") {
		prof.Matte.Extractor = f.extractor
	}
	if changed("model") {
		prof.Matte.Model = f.model
	}
	if changed("alpha-matting") {
		prof.Matte.AlphaMatting = f.alphaMatting
	}

	if err := prof.Validate(); err != nil {
		return profile.Profile{}, err
	}
	return prof, nil
}

// extractorFor builds the extractor the profile asks for. Modes that
// composite nothing get the passthrough.
func (f *profileFlags) extractorFor(prof profile.Profile) (matte.Extractor, error) {
	if prof.Mode != "auto" && prof.Mode != "" {
		return matte.Passthrough{}, nil
	}
	ext, err := matte.ByName(prof.Matte.Extractor)
	if err != nil {
		return nil, err
	}
	if c, ok := ext.(*matte.Command); ok {
		c.Path = f.rembgPath
		if !c.Available() {
			logger.Warn("rembg not found; use --extractor keycolor for plain backdrops or --mode semi for cut-outs")
		}
	}
	return ext, nil
}

// parseColor accepts "67,142,219" or "#438edb".
func parseColor(s string) ([3]uint8, error) {
	var c [3]uint8
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) != 6 {
			return c, fmt.Errorf("background %q: want #RRGGBB", s)
		}
		for i := 0; i < 3; i++ {
			v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
			if err != nil {
				return c, fmt.Errorf("background %q: %w", s, err)
			}
			c[i] = uint8(v)
		}
		return c, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return c, fmt.Errorf("background %q: want R,G,B", s)
	}
	for i, p := range parts {
		v, err := strconv.ParseUint(strings.TrimSpace(p), 10, 8)
		if err != nil {
			return c, fmt.Errorf("background %q: %w", s, err)
		}
		c[i] = uint8(v)
	}
	return c, nil
}
