package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vigilz/homebase/internal/service/relay"
	"github.com/vigilz/homebase/internal/version"
)

// defaultRelayPin is the stock BCM pin driving the alarm relay.
const defaultRelayPin = 17

var (
	// pin is the BCM pin number driving the relay.
	pin int
	// simulate skips real GPIO and only logs state changes.
	simulate bool
	// delay is how long a toggle holds the relay on.
	delay time.Duration

	// rootCmd represents the base command for driving the alarm relay.
	rootCmd = &cobra.Command{
		Use:   "homebase-relay [on|off|toggle]",
		Short: "Drive the alarm relay directly for testing.",
		Long: `Drives the GPIO alarm relay without running the scorer.

"on" asserts the relay, "off" releases it, and "toggle" asserts it for the
delay and then releases it. On hosts without GPIO hardware, pass --simulate
to log state changes instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &relay.Options{
				Pin:      pin,
				Simulate: simulate,
				State:    args[0],
				Delay:    delay,
			}

			return relay.Run(ctx, options)
		},
	}
)

// Execute runs the homebase-relay CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().IntVarP(&pin, "pin", "p", defaultRelayPin, "BCM pin number driving the relay")
	rootCmd.Flags().BoolVar(&simulate, "simulate", false, "log state changes instead of driving GPIO")
	rootCmd.Flags().DurationVarP(&delay, "delay", "d", relay.DefaultToggleDelay, "how long a toggle holds the relay on")
}
