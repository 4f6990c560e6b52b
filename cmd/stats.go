package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/AnyUserName/idphoto-cli/internal/manifest"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats <out_dir_or_manifest>",
	Short: "Display statistics for a built portrait directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(_ *cobra.Command, args []string) error {
	path := args[0]

	// If path is a directory, look for manifest inside.
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		path = filepath.Join(path, manifest.FileName)
	}

	m, err := manifest.ReadJSON(path)
	if err != nil {
		return err
	}

	printStats(m)
	return nil
}

func printStats(m *manifest.Manifest) {
	fmt.Println()
	fmt.Printf("  Manifest version: %d\n", m.Version)
	fmt.Printf("  Generated:        %s\n", m.GeneratedAt)
	fmt.Printf("  Profile:          %s (mode %s)\n", m.Profile, m.Target.Mode)
	fmt.Printf("  Target:           %dx%d, %d DPI, %s – %s\n", m.Target.Width, m.Target.Height, m.Target.DPI,
		formatBytes(int64(m.Target.MinBytes)), formatBytes(int64(m.Target.MaxBytes)))
	if m.BuildInfo != nil {
		fmt.Printf("  Workers:          %d (extractor: %s)\n", m.BuildInfo.Workers, m.BuildInfo.Extractor)
	}
	fmt.Println()

	s := m.Stats
	fmt.Printf("  Total photos:     %d\n", s.TotalPhotos)
	fmt.Printf("  Input size:       %s\n", formatBytes(s.TotalInputBytes))
	fmt.Printf("  Output size:      %s\n", formatBytes(s.TotalOutputBytes))
	if s.TotalPhotos > 0 {
		fmt.Printf("  Average output:   %s\n", formatBytes(s.TotalOutputBytes/int64(s.TotalPhotos)))
	}
	fmt.Println()

	// Stop-reason breakdown.
	exits := map[string]int{}
	for _, p := range m.Photos {
		exits[p.Output.Exit]++
	}
	fmt.Println("  Search outcome:")
	for _, e := range []string{"good-enough", "ceiling", "first-fit", "exhausted"} {
		if n, ok := exits[e]; ok {
			fmt.Printf("    %-12s %4d photos\n", e, n)
		}
	}
	fmt.Println()

	// Quality histogram.
	qualities := map[int]int{}
	var attempts int
	for _, p := range m.Photos {
		qualities[p.Output.Quality]++
		attempts += p.Output.Attempts
	}
	var qs []int
	for q := range qualities {
		qs = append(qs, q)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(qs)))
	fmt.Println("  Quality breakdown:")
	for _, q := range qs {
		fmt.Printf("    q=%-4d %4d photos\n", q, qualities[q])
	}
	if len(m.Photos) > 0 {
		fmt.Printf("  Encodes per photo: %.1f\n", float64(attempts)/float64(len(m.Photos)))
	}

	// Warnings.
	var warnings []string
	for key, p := range m.Photos {
		if !p.Output.WithinBudget {
			warnings = append(warnings, fmt.Sprintf("photo %q is over the size limit (%s)", key, formatBytes(p.Output.Size)))
		}
		if p.Output.UnderMin {
			warnings = append(warnings, fmt.Sprintf("photo %q is under the minimum size (%s)", key, formatBytes(p.Output.Size)))
		}
	}
	if s.Failed > 0 {
		warnings = append(warnings, fmt.Sprintf("%d source photos failed to process", s.Failed))
	}
	if len(warnings) > 0 {
		sort.Strings(warnings)
		fmt.Println()
		fmt.Printf("  Warnings (%d):\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("    ⚠ %s\n", w)
		}
	}
	fmt.Println()
}
