package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/AnyUserName/idphoto-cli/internal/manifest"
	"github.com/AnyUserName/idphoto-cli/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	buildOutDir     string
	buildWorkers    int
	buildKeepCutout bool
	buildFlags      profileFlags
)

var buildCmd = &cobra.Command{
	Use:   "build <input_dir>",
	Short: "Turn a directory of photos into compliant portraits + manifest",
	Long: `Scans input directory for photos (png, jpg, jpeg, webp, gif, bmp, tiff),
removes the background, lays each subject out on the profile canvas,
encodes a JPEG inside the size window, and writes a manifest file.

Output filenames are content-addressed: <key>.<w>.<h>.<hash>.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOutDir, "out", "o", "./idphoto_out", "output directory")
	buildCmd.Flags().IntVarP(&buildWorkers, "workers", "w", 0, "parallel workers (0 = NumCPU)")
	buildCmd.Flags().BoolVar(&buildKeepCutout, "keep-cutout", false, "also write each extracted subject as PNG")
	buildFlags.register(buildCmd)
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	inputDir := args[0]
	start := time.Now()

	// Resolve absolute paths.
	absInput, err := filepath.Abs(inputDir)
	if err != nil {
		return fmt.Errorf("resolve input path: %w", err)
	}
	absOutput, err := filepath.Abs(buildOutDir)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}

	prof, err := buildFlags.resolve(cmd)
	if err != nil {
		return err
	}
	ext, err := buildFlags.extractorFor(prof)
	if err != nil {
		return err
	}

	logger.Debug("input", "path", absInput)
	logger.Debug("output", "path", absOutput)
	logger.Debug("profile", "name", prof.Name, "canvas", fmt.Sprintf("%dx%d", prof.Width, prof.Height),
		"dpi", prof.DPI, "window_kb", fmt.Sprintf("%d-%d", prof.MinKB, prof.MaxKB))

	if err := os.MkdirAll(absOutput, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	p := pipeline.New(pipeline.Config{
		InputDir:   absInput,
		OutputDir:  absOutput,
		Profile:    prof,
		Extractor:  ext,
		Workers:    buildWorkers,
		KeepCutout: buildKeepCutout,
		Logger:     logger,
	})

	m, err := p.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	manifestPath := filepath.Join(absOutput, manifest.FileName)
	if err := manifest.WriteJSON(m, manifestPath); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	printBuildReport(m, time.Since(start))
	return nil
}

func printBuildReport(m *manifest.Manifest, elapsed time.Duration) {
	fmt.Println()
	fmt.Println("╔══════════════════════════════════════════════════╗")
	fmt.Println("║              idphoto build complete              ║")
	fmt.Println("╚══════════════════════════════════════════════════╝")
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Profile:     %s (%dx%d, %d DPI)\n", m.Profile, m.Target.Width, m.Target.Height, m.Target.DPI)
	fmt.Printf("  Window:      %s – %s\n", formatBytes(int64(m.Target.MinBytes)), formatBytes(int64(m.Target.MaxBytes)))
	fmt.Printf("  Photos:      %d\n", s.TotalPhotos)
	if s.Failed > 0 {
		fmt.Printf("  Failed:      %d\n", s.Failed)
	}
	fmt.Printf("  Input size:  %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size: %s\n", formatBytes(s.TotalOutputBytes))
	if s.OverBudget > 0 {
		fmt.Printf("  Over max:    %d (best effort at minimum quality)\n", s.OverBudget)
	}
	if s.UnderMin > 0 {
		fmt.Printf("  Under min:   %d (accepted; check with the submission system)\n", s.UnderMin)
	}
	fmt.Printf("  Time:        %s\n", elapsed.Round(time.Millisecond))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:     %d  (extractor: %s)\n", m.BuildInfo.Workers, m.BuildInfo.Extractor)
	}
	fmt.Println()

	if len(m.Photos) > 0 {
		keys := make([]string, 0, len(m.Photos))
		for k := range m.Photos {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		n := len(keys)
		if n > 10 {
			n = 10
		}
		fmt.Printf("  First %d photos (quality, size, stop reason):\n", n)
		for _, k := range keys[:n] {
			o := m.Photos[k].Output
			fmt.Printf("    %-40s q=%-3d %8s  %s\n", truncKey(k, 40), o.Quality, formatBytes(o.Size), o.Exit)
		}
		fmt.Println()
	}

	data, _ := json.Marshal(m)
	fmt.Printf("  Manifest:    %s (%s)\n", manifest.FileName, formatBytes(int64(len(data))))
	fmt.Println()
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

func truncKey(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max+3:]
}
