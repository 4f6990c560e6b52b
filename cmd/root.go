package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version = "0.1.0"
	verbose bool
	logger  = newLogger(log.InfoLevel)
)

var rootCmd = &cobra.Command{
	Use:   "idphoto",
	Short: "Compliant ID-portrait generator",
	Long: `idphoto — turns an everyday photo into a submission-ready ID portrait:
solid background, fixed head-room, exact pixel size, print DPI tag,
and a file size inside the window the registration system accepts.

Backgrounds are removed with rembg when installed, or by backdrop
color keying. Built-in profiles cover the CET registration photo.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(*cobra.Command, []string) {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
	},
}

// Execute runs the CLI. Ctrl-C cancels in-flight extractions.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Error(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"idphoto %s (%s/%s, %s)\n",
		version, runtime.GOOS, runtime.GOARCH, runtime.Version(),
	))
}

// newLogger writes timestamped, leveled messages to stderr so stdout
// stays free for reports.
func newLogger(level log.Level) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Prefix:          "idphoto",
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
