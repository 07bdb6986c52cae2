package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
)

// SourceKind selects where radar frames come from.
type SourceKind string

const (
	// SourceSerial reads frames from the sensor's serial device file.
	SourceSerial SourceKind = "serial"
	// SourceMQTT subscribes to a broker topic carrying bridged frames.
	SourceMQTT SourceKind = "mqtt"
	// SourceStdin reads frames from standard input, mostly for piping.
	SourceStdin SourceKind = "stdin"
)

// ThresholdsConfig holds the escalation timing knobs.
type ThresholdsConfig struct {
	// Initial is the delay without movement before the early warning.
	Initial time.Duration `yaml:"initial"`
	// Critical is the delay without movement before the emergency alert.
	Critical time.Duration `yaml:"critical"`
	// CriticalCooldown is the minimum gap between repeated critical alerts.
	CriticalCooldown time.Duration `yaml:"critical_cooldown"`
}

// MQTTConfig holds broker settings for the MQTT frame source.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. "tcp://broker.local:1883".
	Broker string `yaml:"broker"`
	// Topic is the topic carrying raw radar lines.
	Topic string `yaml:"topic"`
	// ClientID identifies this subscriber; defaults to a version tag.
	ClientID string `yaml:"client_id"`
	// Username is the optional broker username. The password comes from
	// the MQTT_PASSWORD environment variable.
	Username string `yaml:"username"`
	// Password is populated from the environment, never from YAML.
	Password string `yaml:"-"`
	// QoS is the subscription quality of service, 0 to 2.
	QoS byte `yaml:"qos"`
}

// SourceConfig selects and parameterizes the radar frame source.
type SourceConfig struct {
	// Kind picks the source implementation.
	Kind SourceKind `yaml:"kind"`
	// Device is the serial device path for the serial source.
	Device string `yaml:"device"`
	// MQTT holds broker settings for the MQTT source.
	MQTT MQTTConfig `yaml:"mqtt"`
}

// EmailConfig holds SMTP delivery settings.
type EmailConfig struct {
	// Enabled turns the email dispatcher on.
	Enabled bool `yaml:"enabled"`
	// Host is the SMTP server hostname.
	Host string `yaml:"host"`
	// Port is the SMTP submission port.
	Port int `yaml:"port"`
	// Sender is the From address; overridable via EMAIL_SENDER.
	Sender string `yaml:"sender"`
	// Recipients are the To addresses; overridable via EMAIL_RECIPIENT.
	Recipients []string `yaml:"recipients"`
	// Password is populated from EMAIL_PASSWORD, never from YAML.
	Password string `yaml:"-"`
}

// TelegramConfig holds Telegram bot delivery settings.
type TelegramConfig struct {
	// Enabled turns the Telegram dispatcher on.
	Enabled bool `yaml:"enabled"`
	// ChatID is the destination chat.
	ChatID int64 `yaml:"chat_id"`
	// BotToken is populated from TELEGRAM_BOT_TOKEN, never from YAML.
	BotToken string `yaml:"-"`
}

// AMQPConfig holds RabbitMQ alert publication settings.
type AMQPConfig struct {
	// Enabled turns the AMQP dispatcher on.
	Enabled bool `yaml:"enabled"`
	// URL is the broker connection string; overridable via AMQP_URL.
	URL string `yaml:"url"`
	// Exchange is the exchange alerts are published to.
	Exchange string `yaml:"exchange"`
	// RoutingKey selects the downstream queue binding.
	RoutingKey string `yaml:"routing_key"`
}

// AlertsConfig groups dispatcher settings.
type AlertsConfig struct {
	// QueueCapacity bounds the async delivery queue.
	QueueCapacity int `yaml:"queue_capacity"`
	// Email configures SMTP delivery.
	Email EmailConfig `yaml:"email"`
	// Telegram configures bot delivery.
	Telegram TelegramConfig `yaml:"telegram"`
	// AMQP configures RabbitMQ publication.
	AMQP AMQPConfig `yaml:"amqp"`
}

// Config holds everything the monitor binaries read at startup.
type Config struct {
	// Thresholds are the escalation timing knobs.
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	// Pacing is the idle delay between loop iterations when no frame is
	// available; it bounds CPU usage and sets the tick resolution.
	Pacing time.Duration `yaml:"pacing"`
	// Source selects the radar frame feed.
	Source SourceConfig `yaml:"source"`
	// Alerts configures delivery channels.
	Alerts AlertsConfig `yaml:"alerts"`
	// SnapshotFile, when set, persists the session across restarts so an
	// in-progress episode survives a crash. Empty disables persistence.
	SnapshotFile string `yaml:"snapshot_file"`
}

const (
	// DefaultConfigFilename is the default filename for monitor settings.
	DefaultConfigFilename = "radar-monitor-settings.yaml"

	// DefaultDevice is the Raspberry Pi UART the sensor is usually wired to.
	DefaultDevice = "/dev/ttyAMA0"

	// DefaultPacing is the idle delay between loop iterations.
	DefaultPacing = 100 * time.Millisecond

	// DefaultFilePermissions is the file mode for written config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errThresholdOrder is returned when the initial threshold is not
	// below the critical one.
	errThresholdOrder = errors.New("initial threshold must be below critical threshold")
	// errUnknownSource is returned for an unrecognized source kind.
	errUnknownSource = errors.New("unknown source kind")
	// errMQTTBrokerRequired is returned when the MQTT source lacks a broker or topic.
	errMQTTBrokerRequired = errors.New("mqtt source requires broker and topic")
)

// Load reads configuration from the provided path, validates it, and
// overlays secrets from the environment (with optional .env file).
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	cfg.applyEnvironment()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
// Secrets are never written; they live in the environment.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields, applies defaults, and rejects dispatcher
// configurations missing their credentials.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyThresholdDefaults(&cfg.Thresholds)

	if cfg.Thresholds.Initial >= cfg.Thresholds.Critical {
		return errThresholdOrder
	}

	if cfg.Pacing <= 0 {
		cfg.Pacing = DefaultPacing
	}

	if err := validateSource(&cfg.Source); err != nil {
		return err
	}

	return validateAlerts(&cfg.Alerts)
}

// SessionThresholds converts the configured durations into domain thresholds.
func (c *Config) SessionThresholds() session.Thresholds {
	return session.Thresholds{
		Initial:          c.Thresholds.Initial,
		Critical:         c.Thresholds.Critical,
		CriticalCooldown: c.Thresholds.CriticalCooldown,
	}
}

// applyEnvironment overlays secrets and overrides from the environment.
// A .env file next to the binary is honored but optional.
func (c *Config) applyEnvironment() {
	_ = godotenv.Load()

	c.Alerts.Email.Password = os.Getenv("EMAIL_PASSWORD")
	c.Alerts.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Source.MQTT.Password = os.Getenv("MQTT_PASSWORD")

	if sender := os.Getenv("EMAIL_SENDER"); sender != "" {
		c.Alerts.Email.Sender = sender
	}

	if recipient := os.Getenv("EMAIL_RECIPIENT"); recipient != "" {
		c.Alerts.Email.Recipients = splitList(recipient)
	}

	if chatID := os.Getenv("TELEGRAM_CHAT_ID"); chatID != "" {
		if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
			c.Alerts.Telegram.ChatID = id
		}
	}

	if url := os.Getenv("AMQP_URL"); url != "" {
		c.Alerts.AMQP.URL = url
	}
}

// applyThresholdDefaults fills unset escalation timings with the defaults.
func applyThresholdDefaults(t *ThresholdsConfig) {
	if t.Initial <= 0 {
		t.Initial = session.DefaultInitialThreshold
	}

	if t.Critical <= 0 {
		t.Critical = session.DefaultCriticalThreshold
	}

	if t.CriticalCooldown <= 0 {
		t.CriticalCooldown = session.DefaultCriticalCooldown
	}
}

// validateSource defaults and checks the frame source selection.
func validateSource(src *SourceConfig) error {
	if src.Kind == "" {
		src.Kind = SourceSerial
	}

	switch src.Kind {
	case SourceSerial:
		if src.Device == "" {
			src.Device = DefaultDevice
		}
	case SourceMQTT:
		if src.MQTT.Broker == "" || src.MQTT.Topic == "" {
			return errMQTTBrokerRequired
		}
	case SourceStdin:
		// Nothing to check.
	default:
		return fmt.Errorf("%w: %q", errUnknownSource, src.Kind)
	}

	return nil
}

// validateAlerts checks that every enabled dispatcher has its credentials.
// Missing credentials are a startup-time configuration error, never a
// runtime surprise inside the monitor loop.
func validateAlerts(alerts *AlertsConfig) error {
	if alerts.QueueCapacity < 0 {
		alerts.QueueCapacity = 0
	}

	if alerts.Email.Enabled {
		if alerts.Email.Sender == "" || alerts.Email.Password == "" || len(alerts.Email.Recipients) == 0 {
			return errors.New("email alerts enabled but sender, password, or recipients missing")
		}
	}

	if alerts.Telegram.Enabled {
		if alerts.Telegram.BotToken == "" || alerts.Telegram.ChatID == 0 {
			return errors.New("telegram alerts enabled but bot token or chat id missing")
		}
	}

	if alerts.AMQP.Enabled {
		if alerts.AMQP.URL == "" || alerts.AMQP.Exchange == "" {
			return errors.New("amqp alerts enabled but url or exchange missing")
		}
	}

	return nil
}

// splitList parses a comma-separated address list.
func splitList(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	return out
}
