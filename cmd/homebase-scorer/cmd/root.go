package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vigilz/homebase/internal/config"
	"github.com/vigilz/homebase/internal/service/scorer"
	"github.com/vigilz/homebase/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string

	// rootCmd represents the base command for running the scorer service.
	rootCmd = &cobra.Command{
		Use:   "homebase-scorer",
		Short: "Run the threat-scoring service.",
		Long: `Starts the scorer that correlates detection events and audio analysis
results from the MQTT broker into a single threat score per tracked subject.

Scores below the inquiry threshold are dropped, scores in the ambiguous band
trigger an audio inquiry, and scores at or above the alarm threshold publish
an alert and drive the relay. Settings come from the configuration file;
when the file is absent, stock settings are used.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &scorer.Options{
				ConfigPath: configPath,
			}

			return scorer.Run(ctx, options)
		},
	}
)

// Execute runs the homebase-scorer CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
}
