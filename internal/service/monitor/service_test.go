package monitor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/config"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/dispatch"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
	repo "github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/repository/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/source"
)

// fakeSource is a Source whose frame channel stays open until closed by the test.
type fakeSource struct {
	frames chan string
	once   sync.Once
}

func newFakeSource() *fakeSource {
	return &fakeSource{frames: make(chan string, 16)}
}

func (f *fakeSource) Frames() <-chan string {
	return f.frames
}

func (f *fakeSource) Err() error {
	return nil
}

func (f *fakeSource) Close() error {
	f.once.Do(func() {
		close(f.frames)
	})

	return nil
}

// recorder captures delivered alerts by tier.
type recorder struct {
	mu       sync.Mutex
	subjects []string
}

func (r *recorder) Name() string {
	return "recorder"
}

func (r *recorder) Deliver(_ context.Context, subject, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.subjects = append(r.subjects, subject)

	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.subjects)
}

// testConfig returns a validated config with millisecond-scale escalation
// timing so loop tests run quickly.
func testConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := &config.Config{
		Thresholds: config.ThresholdsConfig{
			Initial:          40 * time.Millisecond,
			Critical:         150 * time.Millisecond,
			CriticalCooldown: time.Hour,
		},
		Pacing: 5 * time.Millisecond,
	}
	require.NoError(t, config.Validate(cfg))

	return cfg
}

// TestRunEscalates drives the loop end to end: a presence frame followed by
// silence must produce the early warning and then the emergency, and
// cancellation must shut the loop down cleanly.
func TestRunEscalates(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	rec := &recorder{}
	cfg := testConfig(t)

	m := newMonitor(cfg, src, dispatch.NewQueue(rec, 4), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- m.run(ctx)
	}()

	src.frames <- "SJYBSS,1"

	// Early warning, then the emergency.
	require.Eventually(t, func() bool {
		return rec.count() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, src.Close())

	// Debounce and cooldown mean exactly two alerts, in tier order.
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.subjects, 2)
	require.Contains(t, rec.subjects[0], "Initial Alert")
	require.Contains(t, rec.subjects[1], "EMERGENCY")
}

// TestRunMovementResets verifies fresh presence frames keep the escalation
// clock at bay for as long as they arrive.
func TestRunMovementResets(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	rec := &recorder{}

	// Generous threshold relative to the frame rate so scheduler hiccups
	// cannot fake a stall.
	cfg := &config.Config{
		Thresholds: config.ThresholdsConfig{
			Initial:          500 * time.Millisecond,
			Critical:         2 * time.Second,
			CriticalCooldown: time.Hour,
		},
		Pacing: 5 * time.Millisecond,
	}
	require.NoError(t, config.Validate(cfg))

	m := newMonitor(cfg, src, dispatch.NewQueue(rec, 4), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- m.run(ctx)
	}()

	// Keep moving for well past the initial threshold.
	deadline := time.Now().Add(700 * time.Millisecond)
	for time.Now().Before(deadline) {
		src.frames <- "SJYBSS,1"
		time.Sleep(10 * time.Millisecond)
	}

	require.Zero(t, rec.count())

	cancel()
	require.NoError(t, <-done)
	require.NoError(t, src.Close())
}

// TestRunEndsWithSource verifies the loop exits cleanly when the feed ends,
// evaluating escalation one final time on the way out.
func TestRunEndsWithSource(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	rec := &recorder{}

	m := newMonitor(cfg, source.NewScript("SJYBSS,1", "noise", "SJYBSS,0"), dispatch.NewQueue(rec, 4), nil)

	require.NoError(t, m.run(context.Background()))

	// Presence ended before any threshold elapsed, so nothing fired.
	require.Zero(t, rec.count())
	require.False(t, m.state.PresenceDetected)
}

// TestHandleFrameNoise verifies unrecognized frames leave the session untouched.
func TestHandleFrameNoise(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	m := newMonitor(cfg, newFakeSource(), dispatch.NewQueue(&recorder{}, 1), nil)
	m.restore(context.Background())

	before := m.state.Clone()
	m.handleFrame(context.Background(), "not a frame")
	require.Equal(t, before, m.state)
}

// TestRestoreFromSnapshot verifies a persisted session resumes its episode.
func TestRestoreFromSnapshot(t *testing.T) {
	t.Parallel()

	path := t.TempDir() + "/session.json"
	snapshots := repo.NewFileRepository(path)

	saved := session.New(time.Now().Add(-10 * time.Minute))
	saved.Observe(time.Now().Add(-9*time.Minute), session.PresenceSignal{Present: true})
	require.NoError(t, snapshots.Save(context.Background(), saved))

	cfg := testConfig(t)
	m := newMonitor(cfg, newFakeSource(), dispatch.NewQueue(&recorder{}, 1), snapshots)
	m.restore(context.Background())

	require.True(t, m.state.PresenceDetected)
	require.Equal(t, saved.LastMovementTime.Unix(), m.state.LastMovementTime.Unix())
}

// TestBuildDispatcher covers the empty and misconfigured cases.
func TestBuildDispatcher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	// Nothing enabled falls back to log-only delivery.
	cfg := testConfig(t)

	d, cleanup, err := BuildDispatcher(ctx, cfg)
	require.NoError(t, err)
	require.NoError(t, d.Deliver(ctx, "s", "b"))

	cleanup()

	// Enabled email without credentials is a startup error.
	cfg.Alerts.Email.Enabled = true

	_, _, err = BuildDispatcher(ctx, cfg)
	require.Error(t, err)
}
