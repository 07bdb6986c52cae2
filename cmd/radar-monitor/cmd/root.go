package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/config"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/service/monitor"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// sourceKind overrides the frame source from the command line.
	sourceKind string
	// snapshotFile overrides the session snapshot path.
	snapshotFile string
	// logLevel sets the minimum log level.
	logLevel string

	// rootCmd represents the base command for the monitoring daemon.
	rootCmd = &cobra.Command{
		Use:   "radar-monitor [device-path]",
		Short: "Monitor an mmWave radar feed and raise no-movement alerts.",
		Long: `Safety monitor for unattended individuals using an mmWave presence sensor.

Continuously reads presence frames from the sensor (serial device, MQTT
topic, or stdin), tracks when movement was last observed, and raises tiered
alerts: an early warning after the initial threshold and an emergency after
the critical threshold, repeated at most once per cooldown. Fresh movement
or an empty room cancels the escalation.

Alert channels (email, Telegram, RabbitMQ), thresholds, and the frame source
come from the configuration file; secrets come from the environment or a
.env file. The device path argument overrides the configured serial device.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use device path argument if provided, otherwise rely on config.
			var device string
			if len(args) > 0 {
				device = args[0]
			}

			options := &monitor.Options{
				ConfigPath:   configPath,
				Device:       device,
				SourceKind:   sourceKind,
				SnapshotFile: snapshotFile,
			}

			return monitor.Run(ctx, options)
		},
	}
)

// Execute runs the radar-monitor CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&sourceKind, "source", "s", "", "frame source override: serial, mqtt, or stdin")
	rootCmd.Flags().StringVar(&snapshotFile, "snapshot", "", "path to persist the session across restarts")
	rootCmd.Flags().StringVarP(&logLevel, "log-level", "l", "", "minimum log level: debug, info, warn, error")
}
