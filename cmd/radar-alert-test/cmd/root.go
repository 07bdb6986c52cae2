package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/config"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/service/alerttest"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/version"
)

var (
	// configPath stores the path to the configuration YAML file.
	configPath string
	// message overrides the default test message body.
	message string

	// rootCmd represents the base command for testing alert delivery.
	rootCmd = &cobra.Command{
		Use:   "radar-alert-test",
		Short: "Send a test alert through the configured channels.",
		Long: `Send one test alert through every alert channel enabled in the
configuration file (email, Telegram, RabbitMQ) and report the outcome.

Run this after changing alert settings or credentials, so delivery problems
surface during setup rather than during an emergency.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &alerttest.Options{
				ConfigPath: configPath,
				Message:    message,
			}

			return alerttest.Run(ctx, options)
		},
	}
)

// Execute runs the radar-alert-test CLI and exits with non-zero status on error.
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
	rootCmd.Flags().StringVarP(&message, "message", "m", "", "override the test message body")
}
