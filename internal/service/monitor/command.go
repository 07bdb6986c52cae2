package monitor

import (
	"context"
	"fmt"
	"os"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/config"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/dispatch"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
	repo "github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/repository/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/source"
)

// Options controls the monitor process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// Device provides an optional serial device override.
	Device string
	// SourceKind provides an optional frame source override.
	SourceKind string
	// SnapshotFile provides an optional session snapshot path override.
	SnapshotFile string
}

// Run starts the monitor and blocks until the context is canceled or the
// frame source fails. Loads configuration first, then wires source, state
// machine, and alert dispatch together.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "radar-monitor")

	// Load settings from configuration file.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	// Command line overrides take precedence over config.
	if opts.SourceKind != "" {
		cfg.Source.Kind = config.SourceKind(opts.SourceKind)
	}

	if opts.Device != "" {
		cfg.Source.Device = opts.Device
	}

	if opts.SnapshotFile != "" {
		cfg.SnapshotFile = opts.SnapshotFile
	}

	// A source that cannot be opened is fatal; there is nothing to monitor.
	src, err := openSource(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open frame source: %w", err)
	}

	// Ensure the source is released on every exit path.
	defer func() {
		if closeErr := src.Close(); closeErr != nil {
			logger.ErrorKV(ctx, "Failed to close frame source", "error", closeErr)
		}
	}()

	dispatcher, cleanup, err := BuildDispatcher(ctx, cfg)
	if err != nil {
		return fmt.Errorf("configure alert dispatch: %w", err)
	}

	defer cleanup()

	var snapshots repo.Repository
	if cfg.SnapshotFile != "" {
		snapshots = repo.NewFileRepository(cfg.SnapshotFile)
	}

	m := newMonitor(cfg, src, dispatch.NewQueue(dispatcher, cfg.Alerts.QueueCapacity), snapshots)

	logger.InfoKV(ctx, "Starting vital sign monitoring",
		"source", string(cfg.Source.Kind),
		"initial_threshold", cfg.Thresholds.Initial.String(),
		"critical_threshold", cfg.Thresholds.Critical.String(),
		"critical_cooldown", cfg.Thresholds.CriticalCooldown.String())

	return m.run(ctx)
}

// openSource builds the configured frame source.
func openSource(ctx context.Context, cfg *config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceSerial:
		return source.OpenDevice(ctx, cfg.Source.Device)
	case config.SourceMQTT:
		return source.NewMQTT(ctx, source.MQTTOptions{
			Broker:   cfg.Source.MQTT.Broker,
			Topic:    cfg.Source.MQTT.Topic,
			ClientID: cfg.Source.MQTT.ClientID,
			Username: cfg.Source.MQTT.Username,
			Password: cfg.Source.MQTT.Password,
			QoS:      cfg.Source.MQTT.QoS,
		})
	case config.SourceStdin:
		return source.NewReader(ctx, os.Stdin), nil
	default:
		// Validate catches this earlier; kept for safety.
		return nil, fmt.Errorf("unsupported source kind %q", cfg.Source.Kind)
	}
}

// BuildDispatcher assembles the enabled alert transports behind one fan-out.
// The returned cleanup releases transports that hold connections.
// Exported because the alert-test tool wires the same transports.
func BuildDispatcher(ctx context.Context, cfg *config.Config) (dispatch.Dispatcher, func(), error) {
	var (
		dispatchers []dispatch.Dispatcher
		closers     []func() error
	)

	cleanup := func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.ErrorKV(ctx, "Failed to close dispatcher", "error", err)
			}
		}
	}

	if cfg.Alerts.Email.Enabled {
		email, err := dispatch.NewEmail(dispatch.EmailOptions{
			Host:       cfg.Alerts.Email.Host,
			Port:       cfg.Alerts.Email.Port,
			Sender:     cfg.Alerts.Email.Sender,
			Password:   cfg.Alerts.Email.Password,
			Recipients: cfg.Alerts.Email.Recipients,
		})
		if err != nil {
			return nil, nil, err
		}

		dispatchers = append(dispatchers, email)
	}

	if cfg.Alerts.Telegram.Enabled {
		telegram, err := dispatch.NewTelegram(dispatch.TelegramOptions{
			BotToken: cfg.Alerts.Telegram.BotToken,
			ChatID:   cfg.Alerts.Telegram.ChatID,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		dispatchers = append(dispatchers, telegram)
	}

	if cfg.Alerts.AMQP.Enabled {
		publisher, err := dispatch.NewAMQP(dispatch.AMQPOptions{
			URL:        cfg.Alerts.AMQP.URL,
			Exchange:   cfg.Alerts.AMQP.Exchange,
			RoutingKey: cfg.Alerts.AMQP.RoutingKey,
		})
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		dispatchers = append(dispatchers, publisher)
		closers = append(closers, publisher.Close)
	}

	if len(dispatchers) == 0 {
		logger.Warn(ctx, "No alert channels configured; alerts will only be logged")

		noop := dispatch.Func{
			Label: "log-only",
			Fn: func(context.Context, string, string) error {
				return nil
			},
		}

		return noop, cleanup, nil
	}

	return dispatch.NewMulti(dispatchers...), cleanup, nil
}
