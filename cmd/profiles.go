package cmd

import (
	"fmt"

	"github.com/AnyUserName/idphoto-cli/internal/profile"
	"github.com/spf13/cobra"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List built-in profiles and their requirements",
	Args:  cobra.NoArgs,
	Run: func(*cobra.Command, []string) {
		for _, name := range profile.Names() {
			printProfile(profile.Get(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(profilesCmd)
}

func printProfile(p profile.Profile) {
	fmt.Println()
	fmt.Printf("  %s\n", p.Name)
	if p.Description != "" {
		fmt.Printf("    %s\n", p.Description)
	}
	fmt.Printf("    Canvas:     %dx%d, background RGB(%d, %d, %d)\n",
		p.Width, p.Height, p.Background[0], p.Background[1], p.Background[2])
	fmt.Printf("    Layout:     %s, top margin %.0f%%, mode %s\n", p.Anchor, p.TopMargin*100, p.Mode)
	fmt.Printf("    Resolution: %d DPI\n", p.DPI)
	fmt.Printf("    File size:  %d KB – %d KB\n", p.MinKB, p.MaxKB)
	fmt.Printf("    Quality:    %d down to %d, step %d\n", p.Quality.Start, p.Quality.Min, p.Quality.Step)
	fmt.Printf("    Extractor:  %s\n", p.Matte.Extractor)
}
