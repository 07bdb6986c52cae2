package source

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/version"
)

const (
	// mqttFrameBuffer bounds how many frames may queue between broker
	// delivery and the monitor loop.
	mqttFrameBuffer = 64
	// mqttConnectTimeout caps the initial broker handshake.
	mqttConnectTimeout = 10 * time.Second
	// mqttDisconnectQuiesce is how long the client may flush in-flight
	// messages on shutdown, in milliseconds as the paho API requires.
	mqttDisconnectQuiesce = 250
)

// MQTTOptions configures the broker subscription for radar frames.
// Gateways that bridge the sensor UART onto MQTT publish one raw line per
// message (or several separated by newlines).
type MQTTOptions struct {
	// Broker is the broker URL, e.g. "tcp://broker.local:1883".
	Broker string
	// Topic is the topic carrying raw radar lines.
	Topic string
	// ClientID identifies this subscriber to the broker.
	// Defaults to a version-tagged id when empty.
	ClientID string
	// Username and Password are optional broker credentials.
	Username string
	Password string
	// QoS is the subscription quality of service, 0 to 2.
	QoS byte
}

// MQTT is a source that receives radar frames from an MQTT topic.
type MQTT struct {
	client mqtt.Client
	topic  string
	frames chan string

	mu     sync.Mutex
	closed bool
}

// NewMQTT connects to the broker and subscribes to the frame topic.
func NewMQTT(ctx context.Context, opts MQTTOptions) (*MQTT, error) {
	clientID := opts.ClientID
	if clientID == "" {
		clientID = version.Tag("radar-monitor")
	}

	clientOptions := mqtt.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetCleanSession(true).
		SetConnectTimeout(mqttConnectTimeout)

	if opts.Username != "" {
		clientOptions.SetUsername(opts.Username)
	}

	if opts.Password != "" {
		clientOptions.SetPassword(opts.Password)
	}

	client := mqtt.NewClient(clientOptions)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to MQTT broker: %w", token.Error())
	}

	m := &MQTT{
		client: client,
		topic:  opts.Topic,
		frames: make(chan string, mqttFrameBuffer),
	}

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		m.deliver(ctx, string(msg.Payload()))
	}

	if token := client.Subscribe(opts.Topic, opts.QoS, handler); token.Wait() && token.Error() != nil {
		client.Disconnect(mqttDisconnectQuiesce)

		return nil, fmt.Errorf("subscribe to topic %s: %w", opts.Topic, token.Error())
	}

	logger.InfoKV(ctx, "Subscribed to radar frame topic",
		"broker", opts.Broker, "topic", opts.Topic, "client_id", clientID)

	return m, nil
}

// deliver splits a payload into lines and queues each as one frame.
// A consumer that has fallen behind costs dropped frames, never a stalled
// broker callback. The mutex orders deliveries against Close so a late
// callback cannot hit a closed channel.
func (m *MQTT) deliver(ctx context.Context, payload string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return
	}

	for _, line := range strings.Split(payload, "\n") {
		if line = strings.TrimSpace(line); line == "" {
			continue
		}

		select {
		case m.frames <- line:
		default:
			logger.WarnKV(ctx, "Frame buffer full, dropping frame", "topic", m.topic)
		}
	}
}

// Frames returns the channel of raw frame lines.
func (m *MQTT) Frames() <-chan string {
	return m.frames
}

// Err always reports nil; broker outages are handled by auto-reconnect.
func (m *MQTT) Err() error {
	return nil
}

// Close unsubscribes and disconnects from the broker.
func (m *MQTT) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}

	m.closed = true
	m.mu.Unlock()

	token := m.client.Unsubscribe(m.topic)
	token.Wait()

	m.client.Disconnect(mqttDisconnectQuiesce)
	close(m.frames)

	if err := token.Error(); err != nil {
		return fmt.Errorf("unsubscribe from topic %s: %w", m.topic, err)
	}

	return nil
}
