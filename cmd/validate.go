package cmd

import (
	"bytes"
	"fmt"
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"

	"github.com/AnyUserName/idphoto-cli/internal/encoder"
	"github.com/AnyUserName/idphoto-cli/internal/hasher"
	"github.com/AnyUserName/idphoto-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var validateStrict bool

var validateCmd = &cobra.Command{
	Use:   "validate <manifest_path>",
	Short: "Check an idphoto manifest and the portraits it references",
	Long: `Re-reads every portrait listed in the manifest and checks that it
exists, matches its recorded hash, has the target pixel size and DPI tag,
and fits under the maximum size. With --strict, outputs below the
minimum size also fail.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "treat outputs below min size as errors")
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, args []string) error {
	manifestPath := args[0]
	if info, err := os.Stat(manifestPath); err == nil && info.IsDir() {
		manifestPath = filepath.Join(manifestPath, manifest.FileName)
	}

	m, err := manifest.ReadJSON(manifestPath)
	if err != nil {
		return err
	}

	errors := validateManifest(m, filepath.Dir(manifestPath), validateStrict)
	if len(errors) == 0 {
		fmt.Println("  ✓ Manifest is valid")
		fmt.Printf("  ✓ %d photos at %dx%d, %d DPI — all files present\n",
			len(m.Photos), m.Target.Width, m.Target.Height, m.Target.DPI)
		return nil
	}

	fmt.Printf("  ✗ Manifest has %d error(s):\n", len(errors))
	for _, e := range errors {
		fmt.Printf("    • %s\n", e)
	}
	return fmt.Errorf("validation failed with %d errors", len(errors))
}

func validateManifest(m *manifest.Manifest, baseDir string, strict bool) []string {
	var errs []string
	t := m.Target

	if t.Width <= 0 || t.Height <= 0 || t.DPI <= 0 {
		errs = append(errs, fmt.Sprintf("invalid target %dx%d @ %d DPI", t.Width, t.Height, t.DPI))
	}

	seenPaths := map[string]bool{}
	for key, photo := range m.Photos {
		o := photo.Output
		if o.Path == "" {
			errs = append(errs, fmt.Sprintf("photo %q: missing path", key))
			continue
		}
		if seenPaths[o.Path] {
			errs = append(errs, fmt.Sprintf("photo %q: duplicate path %q", key, o.Path))
		}
		seenPaths[o.Path] = true

		data, err := os.ReadFile(filepath.Join(baseDir, o.Path))
		if err != nil {
			errs = append(errs, fmt.Sprintf("photo %q: file not found: %s", key, o.Path))
			continue
		}
		errs = append(errs, checkPortrait(key, data, o, t, strict)...)

		if photo.Cutout != "" {
			errs = append(errs, checkCutout(key, baseDir, photo.Cutout)...)
		}
	}

	if m.Stats.TotalPhotos != len(m.Photos) {
		errs = append(errs, fmt.Sprintf("stats.total_photos mismatch: %d != %d", m.Stats.TotalPhotos, len(m.Photos)))
	}
	return errs
}

// checkCutout re-hashes a saved cut-out against the hash in its name
// (key.cutout.hash8.ext).
func checkCutout(key, baseDir, rel string) []string {
	sum, err := hasher.FileHash(filepath.Join(baseDir, rel), 8)
	if err != nil {
		return []string{fmt.Sprintf("photo %q: cut-out not found: %s", key, rel)}
	}
	if !strings.Contains(filepath.Base(rel), ".cutout."+sum+".") {
		return []string{fmt.Sprintf("photo %q: cut-out content hash mismatch: %s", key, rel)}
	}
	return nil
}

// checkPortrait compares the bytes on disk against the manifest entry
// and the target requirements.
func checkPortrait(key string, data []byte, o manifest.Output, t manifest.Target, strict bool) []string {
	var errs []string
	size := len(data)

	if o.Size > 0 && int64(size) != o.Size {
		errs = append(errs, fmt.Sprintf("photo %q: size mismatch: manifest=%d, disk=%d", key, o.Size, size))
	}
	if o.Hash != "" && hasher.ContentHash(data, len(o.Hash)) != o.Hash {
		errs = append(errs, fmt.Sprintf("photo %q: content hash mismatch", key))
	}

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		errs = append(errs, fmt.Sprintf("photo %q: not a JPEG: %v", key, err))
		return errs
	}
	if cfg.Width != t.Width || cfg.Height != t.Height {
		errs = append(errs, fmt.Sprintf("photo %q: %dx%d, want %dx%d", key, cfg.Width, cfg.Height, t.Width, t.Height))
	}

	if dpi, ok := encoder.ReadDensity(data); !ok {
		errs = append(errs, fmt.Sprintf("photo %q: no DPI tag", key))
	} else if dpi != t.DPI {
		errs = append(errs, fmt.Sprintf("photo %q: %d DPI, want %d", key, dpi, t.DPI))
	}

	if size > t.MaxBytes {
		errs = append(errs, fmt.Sprintf("photo %q: %s exceeds max %s", key,
			formatBytes(int64(size)), formatBytes(int64(t.MaxBytes))))
	}
	if strict && size < t.MinBytes {
		errs = append(errs, fmt.Sprintf("photo %q: %s below min %s", key,
			formatBytes(int64(size)), formatBytes(int64(t.MinBytes))))
	}
	return errs
}
