package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
)

const (
	// DefaultQueueCapacity bounds how many alerts may wait for delivery.
	// Alerts are rare by construction (debounced and cooled down), so a
	// small buffer is ample.
	DefaultQueueCapacity = 16

	// defaultDeliveryTimeout caps a single delivery attempt so one stuck
	// transport cannot pin the worker forever.
	defaultDeliveryTimeout = 30 * time.Second
)

// Queue decouples alert delivery from the monitor loop. The loop enqueues
// immutable AlertEvents without blocking; a single worker goroutine performs
// the actual deliveries. Slow transports therefore never delay the next
// escalation tick.
type Queue struct {
	dispatcher Dispatcher
	events     chan session.AlertEvent
	timeout    time.Duration
	wg         sync.WaitGroup
	once       sync.Once
}

// NewQueue creates an alert queue in front of the given dispatcher.
// A non-positive capacity falls back to DefaultQueueCapacity.
func NewQueue(dispatcher Dispatcher, capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultQueueCapacity
	}

	return &Queue{
		dispatcher: dispatcher,
		events:     make(chan session.AlertEvent, capacity),
		timeout:    defaultDeliveryTimeout,
	}
}

// Start launches the delivery worker. It returns immediately; the worker
// runs until Stop is called and the queue drains.
func (q *Queue) Start(ctx context.Context) {
	q.wg.Add(1)

	go q.work(ctx)
}

// Enqueue hands one alert to the worker without blocking.
// It reports false when the queue is full; the alert is then dropped with an
// error log rather than stalling the tick path. Debounce flags stay set, so
// the cooldown rules govern any re-alert.
func (q *Queue) Enqueue(ctx context.Context, event session.AlertEvent) bool {
	select {
	case q.events <- event:
		return true
	default:
		logger.ErrorKV(ctx, "Alert queue full, dropping alert",
			"alert_id", event.ID, "tier", event.Tier)

		return false
	}
}

// Stop closes the queue and waits for queued deliveries to finish.
func (q *Queue) Stop() {
	q.once.Do(func() {
		close(q.events)
	})

	q.wg.Wait()
}

// work delivers queued alerts until the queue closes.
func (q *Queue) work(ctx context.Context) {
	defer q.wg.Done()

	for event := range q.events {
		q.deliver(ctx, event)
	}
}

// deliver performs one delivery attempt with a bounded timeout.
// Failures are logged and otherwise ignored: the monitoring state machine's
// debounce and cooldown rules decide when a re-alert is due, not a retry loop.
func (q *Queue) deliver(ctx context.Context, event session.AlertEvent) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), q.timeout)
	defer cancel()

	if err := q.dispatcher.Deliver(callCtx, event.Subject, Body(event)); err != nil {
		logger.ErrorKV(ctx, "Alert dispatch failed",
			"alert_id", event.ID, "tier", event.Tier, "error", err)

		return
	}

	logger.InfoKV(ctx, "Alert dispatched",
		"alert_id", event.ID, "tier", event.Tier, "elapsed_seconds", event.ElapsedSeconds)
}
