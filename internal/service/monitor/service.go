package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/config"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/dispatch"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
	repo "github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/repository/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/signal"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/source"
)

// snapshotInterval bounds how often the session is persisted outside of
// transitions, so a restart resumes with a reasonably fresh movement time.
const snapshotInterval = 30 * time.Second

// monitor owns the monitoring session and drives the tick cadence.
// It is unexported to keep the CLI wiring decoupled from the loop.
type monitor struct {
	// src yields raw radar frames.
	src source.Source
	// queue hands alerts to the asynchronous delivery worker.
	queue *dispatch.Queue
	// snapshots optionally persists the session; nil disables persistence.
	snapshots repo.Repository
	// thresholds are the escalation timing knobs.
	thresholds session.Thresholds
	// pacing is the idle delay between loop iterations.
	pacing time.Duration
	// state is the monitoring session for this run.
	state *session.Session
	// now is the clock, injectable for deterministic tests.
	now func() time.Time
	// lastSnapshot is when the session was last persisted.
	lastSnapshot time.Time
}

// newMonitor wires the monitor loop from its collaborators.
func newMonitor(cfg *config.Config, src source.Source, queue *dispatch.Queue, snapshots repo.Repository) *monitor {
	return &monitor{
		src:        src,
		queue:      queue,
		snapshots:  snapshots,
		thresholds: cfg.SessionThresholds(),
		pacing:     cfg.Pacing,
		now:        time.Now,
	}
}

// run executes the monitor loop until the context is canceled or the frame
// source ends. The source is closed by the caller; the alert queue drains
// before return so no accepted alert is lost on shutdown.
func (m *monitor) run(ctx context.Context) error {
	m.restore(ctx)

	m.queue.Start(ctx)
	defer m.queue.Stop()

	// The ticker keeps escalation checks firing during sensor silence.
	ticker := time.NewTicker(m.pacing)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Monitoring stopped")
			m.persist(ctx, m.now())

			return nil
		case line, ok := <-m.src.Frames():
			if !ok {
				// Evaluate escalation one last time so a replayed or
				// piped feed still reports its trailing alerts.
				m.tick(ctx, m.now())

				if err := m.src.Err(); err != nil {
					return err
				}

				logger.Info(ctx, "Frame source ended")

				return nil
			}

			m.handleFrame(ctx, line)
		case <-ticker.C:
		}

		m.tick(ctx, m.now())
	}
}

// restore loads a persisted session when snapshots are enabled, otherwise
// starts a fresh idle session.
func (m *monitor) restore(ctx context.Context) {
	now := m.now()
	m.state = session.New(now)

	if m.snapshots == nil {
		return
	}

	restored, err := m.snapshots.Load(ctx)

	switch {
	case err == nil:
		m.state = restored
		logger.InfoKV(ctx, "Restored monitoring session",
			"presence_detected", restored.PresenceDetected,
			"stillness", restored.Stillness(now).String())
	case errors.Is(err, repo.ErrNotFound):
		// Keep the fresh session.
	default:
		logger.ErrorKV(ctx, "Failed to restore session, starting fresh", "error", err)
	}
}

// handleFrame decodes one raw line and feeds any resulting signal into the
// state machine. Unrecognized lines are noise, not errors.
func (m *monitor) handleFrame(ctx context.Context, line string) {
	sig, ok := signal.Parse(line)
	if !ok {
		logger.DebugKV(ctx, "Ignoring unrecognized frame", "frame", line)

		return
	}

	now := m.now()
	if m.state.Observe(now, sig) {
		if sig.Present {
			logger.Info(ctx, "Presence detected")
		} else {
			logger.Info(ctx, "No presence detected")
		}

		m.persist(ctx, now)
	}
}

// tick evaluates escalation and hands any fired alerts to the delivery queue.
func (m *monitor) tick(ctx context.Context, now time.Time) {
	alerts := m.state.Tick(now, m.thresholds)

	for _, alert := range alerts {
		switch alert.Tier {
		case session.TierInitial:
			logger.Warnf(ctx, "INITIAL ALERT: Person present but no vital signs detected for %d seconds",
				alert.ElapsedSeconds)
		case session.TierCritical:
			logger.Errorf(ctx, "EMERGENCY: No vital signs detected for %d seconds!",
				alert.ElapsedSeconds)
		}

		m.queue.Enqueue(ctx, alert)
	}

	if len(alerts) > 0 {
		m.persist(ctx, now)

		return
	}

	// Periodic persistence keeps the stored movement time fresh.
	if m.snapshots != nil && now.Sub(m.lastSnapshot) > snapshotInterval {
		m.persist(ctx, now)
	}
}

// persist writes the session snapshot when persistence is enabled.
func (m *monitor) persist(ctx context.Context, now time.Time) {
	if m.snapshots == nil {
		return
	}

	if err := m.snapshots.Save(ctx, m.state); err != nil {
		logger.ErrorKV(ctx, "Failed to persist session", "error", err)

		return
	}

	m.lastSnapshot = now
}
