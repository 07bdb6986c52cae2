package dispatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
)

// Dispatcher delivers one alert to an external channel.
// Delivery latency and transport details are opaque to the monitor core.
type Dispatcher interface {
	// Name identifies the transport in logs and test output.
	Name() string
	// Deliver sends the alert. A nil return means the transport accepted it.
	Deliver(ctx context.Context, subject, body string) error
}

// ErrNoDispatchers is returned when delivery is attempted with nothing configured.
var ErrNoDispatchers = errors.New("no dispatchers configured")

// Body renders the alert message with its timestamp appended, the form every
// transport sends.
func Body(event session.AlertEvent) string {
	return fmt.Sprintf("%s\n\nTimestamp: %s",
		event.Message, event.Timestamp.Format("2006-01-02 15:04:05"))
}

// Multi fans one alert out to several transports.
// Every transport is attempted even when an earlier one fails.
type Multi struct {
	dispatchers []Dispatcher
}

// NewMulti creates a fan-out dispatcher over the provided transports.
func NewMulti(dispatchers ...Dispatcher) *Multi {
	return &Multi{dispatchers: dispatchers}
}

// Name identifies the fan-out in logs.
func (m *Multi) Name() string {
	return "multi"
}

// Dispatchers returns the configured transports.
func (m *Multi) Dispatchers() []Dispatcher {
	return m.dispatchers
}

// Deliver sends the alert through every transport and reports the failures
// joined, so one broken channel never silences the others.
func (m *Multi) Deliver(ctx context.Context, subject, body string) error {
	if len(m.dispatchers) == 0 {
		return ErrNoDispatchers
	}

	var errs []error

	for _, d := range m.dispatchers {
		if err := d.Deliver(ctx, subject, body); err != nil {
			logger.ErrorKV(ctx, "Alert delivery failed", "dispatcher", d.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", d.Name(), err))

			continue
		}

		logger.InfoKV(ctx, "Alert delivered", "dispatcher", d.Name(), "subject", subject)
	}

	return errors.Join(errs...)
}

// Func adapts a plain function into a Dispatcher; handy in tests.
type Func struct {
	// Label is the dispatcher name reported in logs.
	Label string
	// Fn performs the delivery.
	Fn func(ctx context.Context, subject, body string) error
}

// Name identifies the adapter in logs.
func (f Func) Name() string {
	return f.Label
}

// Deliver invokes the wrapped function.
func (f Func) Deliver(ctx context.Context, subject, body string) error {
	return f.Fn(ctx, subject, body)
}
