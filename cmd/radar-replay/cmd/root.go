package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/service/replay"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/version"
)

var (
	// initialThreshold is the no-movement delay before the early warning.
	initialThreshold time.Duration
	// criticalThreshold is the no-movement delay before the emergency.
	criticalThreshold time.Duration
	// criticalCooldown is the minimum gap between repeated emergencies.
	criticalCooldown time.Duration
	// tail extends the simulation past the last recorded frame.
	tail time.Duration

	// rootCmd represents the base command for offline replay.
	rootCmd = &cobra.Command{
		Use:   "radar-replay <frame-log>",
		Short: "Replay a recorded radar frame log through the state machine.",
		Long: `Replay a recorded frame log with a simulated clock and report the
alerts a live monitor would have raised.

The log holds one line per frame: "<RFC3339 timestamp>,<raw frame>", with
blank lines and '#' comments skipped. No alerts are delivered anywhere;
this is a dry run for tuning thresholds against recorded nights.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			options := &replay.Options{
				InputPath: args[0],
				Thresholds: session.Thresholds{
					Initial:          initialThreshold,
					Critical:         criticalThreshold,
					CriticalCooldown: criticalCooldown,
				},
				Tail:   tail,
				Output: cmd.OutOrStdout(),
			}

			summary, err := replay.Run(context.Background(), options)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"frames: %d, signals: %d, initial alerts: %d, critical alerts: %d\n",
				summary.Frames, summary.Signals, summary.Initial, summary.Critical)

			return nil
		},
	}
)

// Execute runs the radar-replay CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().DurationVar(&initialThreshold, "initial", session.DefaultInitialThreshold,
		"no-movement delay before the early warning")
	rootCmd.Flags().DurationVar(&criticalThreshold, "critical", session.DefaultCriticalThreshold,
		"no-movement delay before the emergency alert")
	rootCmd.Flags().DurationVar(&criticalCooldown, "cooldown", session.DefaultCriticalCooldown,
		"minimum gap between repeated emergency alerts")
	rootCmd.Flags().DurationVar(&tail, "tail", 0,
		"keep simulating this long past the last recorded frame")
}
