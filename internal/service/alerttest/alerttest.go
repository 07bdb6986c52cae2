// Package alerttest sends a test alert through the configured dispatchers,
// so a deployment can prove its delivery channels before relying on them.
package alerttest

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/config"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/dispatch"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/service/monitor"
)

// Options controls the alert test.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Message overrides the default test message body.
	Message string
}

// Run delivers one test alert through every configured transport and
// reports the first failure. Transports are attempted independently, so a
// broken channel does not mask working ones.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "radar-alert-test")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	dispatcher, cleanup, err := monitor.BuildDispatcher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("configure alert dispatch: %w", err)
	}

	defer cleanup()

	message := opts.Message
	if message == "" {
		message = "This is a test alert from the radar monitor.\n" +
			"If you received it, alert delivery is configured correctly."
	}

	event := session.AlertEvent{
		ID:        uuid.NewString(),
		Tier:      session.TierInitial,
		Subject:   "Motion Sensor - Test Alert",
		Message:   message,
		Timestamp: time.Now(),
	}

	logger.InfoKV(ctx, "Sending test alert", "alert_id", event.ID)

	if err := dispatcher.Deliver(ctx, event.Subject, dispatch.Body(event)); err != nil {
		return fmt.Errorf("deliver test alert: %w", err)
	}

	logger.Info(ctx, "Test alert delivered")

	return nil
}
