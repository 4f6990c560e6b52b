package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/AnyUserName/idphoto-cli/internal/hasher"
	"github.com/AnyUserName/idphoto-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	makeOut    string
	makeCutout string
	makeFlags  profileFlags
)

var makeCmd = &cobra.Command{
	Use:   "make <photo>",
	Short: "Produce one compliant portrait from a single photo",
	Args:  cobra.ExactArgs(1),
	RunE:  runMake,
}

func init() {
	makeCmd.Flags().StringVarP(&makeOut, "out", "o", "CET_Photo_Standard.jpg", "output file")
	makeCmd.Flags().StringVar(&makeCutout, "cutout", "", "also write the extracted subject to this PNG file")
	makeFlags.register(makeCmd)
	rootCmd.AddCommand(makeCmd)
}

func runMake(cmd *cobra.Command, args []string) error {
	prof, err := makeFlags.resolve(cmd)
	if err != nil {
		return err
	}
	ext, err := makeFlags.extractorFor(prof)
	if err != nil {
		return err
	}

	img, err := pipeline.DecodeFile(args[0])
	if err != nil {
		return fmt.Errorf("decode %s: %w", args[0], err)
	}
	logger.Debug("decoded", "path", args[0], "size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()))

	r, err := pipeline.Render(cmd.Context(), img, prof, ext)
	if err != nil {
		return err
	}
	art := r.Artifact
	for _, a := range art.Attempts {
		logger.Debug("attempt", "quality", a.Quality, "size", a.Size)
	}

	if dir := filepath.Dir(makeOut); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(makeOut, art.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", makeOut, err)
	}

	if makeCutout != "" && r.Strategy.Composite() {
		data, _, err := pipeline.EncodeCutout(r.Subject, prof.DPI)
		if err != nil {
			return fmt.Errorf("encode cut-out: %w", err)
		}
		if err := os.WriteFile(makeCutout, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", makeCutout, err)
		}
	}

	b := prof.Budget()
	switch {
	case !art.WithinBudget:
		logger.Warn("could not reach the size limit; kept the minimum-quality encoding",
			"size", formatBytes(int64(art.Size)), "max", formatBytes(int64(b.MaxBytes)))
	case art.UnderMin:
		logger.Warn("output is below the minimum size; the photo may be rejected",
			"size", formatBytes(int64(art.Size)), "min", formatBytes(int64(b.MinBytes)))
	}

	// Hash what landed on disk, so the line matches what validate sees.
	sum, err := hasher.FileHash(makeOut, 16)
	if err != nil {
		return fmt.Errorf("hash %s: %w", makeOut, err)
	}
	fmt.Printf("  ✓ %s: %dx%d, %d DPI, %d KB (quality %d, %s) %s\n",
		makeOut, prof.Width, prof.Height, art.DPI, art.Size/1024, art.Quality, art.Exit, sum)
	return nil
}
