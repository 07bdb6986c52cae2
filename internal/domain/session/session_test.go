package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// base is an arbitrary fixed instant all scenario tests count from.
var base = time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)

// at returns base shifted by the given number of seconds.
func at(seconds int) time.Time {
	return base.Add(time.Duration(seconds) * time.Second)
}

// TestNewSessionIsIdle verifies the initial state: no presence, no flags,
// timestamps equal to the start time.
func TestNewSessionIsIdle(t *testing.T) {
	t.Parallel()

	s := New(base)
	require.False(t, s.PresenceDetected)
	require.False(t, s.InitialAlarmSent)
	require.False(t, s.CriticalAlarmSent)
	require.Equal(t, base, s.LastMovementTime)
	require.Equal(t, base, s.LastPresenceTime)

	// Idle sessions never alert, regardless of elapsed time.
	require.Empty(t, s.Tick(at(100000), DefaultThresholds()))
}

// TestObserveTransitions verifies presence flips are reported exactly on change.
func TestObserveTransitions(t *testing.T) {
	t.Parallel()

	s := New(base)
	require.True(t, s.Observe(at(1), PresenceSignal{Present: true}))
	require.False(t, s.Observe(at(2), PresenceSignal{Present: true}))
	require.True(t, s.Observe(at(3), PresenceSignal{Present: false}))
	require.False(t, s.Observe(at(4), PresenceSignal{Present: false}))
}

// TestMovementTimeMonotonic verifies LastMovementTime never goes backwards
// and tracks only presence readings.
func TestMovementTimeMonotonic(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(10), PresenceSignal{Present: true})
	require.Equal(t, at(10), s.LastMovementTime)

	// An out-of-order reading must not rewind the clock.
	s.Observe(at(5), PresenceSignal{Present: true})
	require.Equal(t, at(10), s.LastMovementTime)

	// Absence readings do not count as movement.
	s.Observe(at(20), PresenceSignal{Present: false})
	require.Equal(t, at(10), s.LastMovementTime)

	s.Observe(at(30), PresenceSignal{Present: true})
	require.Equal(t, at(30), s.LastMovementTime)
}

// TestScenarioA covers the canonical escalation: presence at t=0, then
// silence. The early warning fires at t=61 with the elapsed time in the
// message, the emergency at t=301, and neither repeats in between.
func TestScenarioA(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})

	// Below the threshold nothing fires.
	require.Empty(t, s.Tick(at(59), DefaultThresholds()))

	alerts := s.Tick(at(61), DefaultThresholds())
	require.Len(t, alerts, 1)
	require.Equal(t, TierInitial, alerts[0].Tier)
	require.Equal(t, 61, alerts[0].ElapsedSeconds)
	require.Equal(t, at(61), alerts[0].Timestamp)
	require.NotEmpty(t, alerts[0].ID)

	// Repeated ticks stay quiet until the critical threshold.
	require.Empty(t, s.Tick(at(120), DefaultThresholds()))
	require.Empty(t, s.Tick(at(300), DefaultThresholds()))

	alerts = s.Tick(at(301), DefaultThresholds())
	require.Len(t, alerts, 1)
	require.Equal(t, TierCritical, alerts[0].Tier)
	require.Equal(t, 301, alerts[0].ElapsedSeconds)
}

// TestScenarioB covers movement resetting the escalation clock: a presence
// reading at t=50 pushes the early warning out to roughly t=111.
func TestScenarioB(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})
	s.Observe(at(50), PresenceSignal{Present: true})

	require.Empty(t, s.Tick(at(61), DefaultThresholds()))
	require.Empty(t, s.Tick(at(110), DefaultThresholds()))

	alerts := s.Tick(at(111), DefaultThresholds())
	require.Len(t, alerts, 1)
	require.Equal(t, TierInitial, alerts[0].Tier)
	require.Equal(t, 61, alerts[0].ElapsedSeconds)
}

// TestScenarioC covers the critical cooldown: after the emergency fires at
// t=301, continued stillness may re-fire it only once the cooldown elapses.
func TestScenarioC(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})

	_ = s.Tick(at(61), DefaultThresholds())

	alerts := s.Tick(at(301), DefaultThresholds())
	require.Len(t, alerts, 1)
	require.Equal(t, TierCritical, alerts[0].Tier)

	// Inside the cooldown window nothing fires.
	require.Empty(t, s.Tick(at(600), DefaultThresholds()))
	require.Empty(t, s.Tick(at(899), DefaultThresholds()))

	// 301 + 600 = 901, so t=902 is past the cooldown.
	alerts = s.Tick(at(902), DefaultThresholds())
	require.Len(t, alerts, 1)
	require.Equal(t, TierCritical, alerts[0].Tier)
	require.Equal(t, at(902), s.LastCriticalAlertTime)
}

// TestScenarioD covers absence resetting the episode: once the subject
// leaves, both flags clear and no alerts ever fire for that episode.
func TestScenarioD(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})
	s.Observe(at(10), PresenceSignal{Present: false})

	require.False(t, s.PresenceDetected)
	require.False(t, s.InitialAlarmSent)
	require.False(t, s.CriticalAlarmSent)

	require.Empty(t, s.Tick(at(61), DefaultThresholds()))
	require.Empty(t, s.Tick(at(301), DefaultThresholds()))
	require.Empty(t, s.Tick(at(10000), DefaultThresholds()))
}

// TestDebounceIdempotence verifies a sent early warning never repeats while
// the elapsed time stays above threshold with no new movement.
func TestDebounceIdempotence(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})

	require.Len(t, s.Tick(at(61), DefaultThresholds()), 1)

	for tick := 62; tick < 300; tick += 10 {
		require.Empty(t, s.Tick(at(tick), DefaultThresholds()))
	}
}

// TestMovementCancelsEscalation verifies a presence reading arriving while
// either alarm flag is set clears both in the same step.
func TestMovementCancelsEscalation(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})

	_ = s.Tick(at(61), DefaultThresholds())
	_ = s.Tick(at(301), DefaultThresholds())
	require.True(t, s.InitialAlarmSent)
	require.True(t, s.CriticalAlarmSent)

	s.Observe(at(310), PresenceSignal{Present: true})
	require.False(t, s.InitialAlarmSent)
	require.False(t, s.CriticalAlarmSent)

	// The escalation clock restarts from the new movement.
	require.Empty(t, s.Tick(at(360), DefaultThresholds()))
	alerts := s.Tick(at(371), DefaultThresholds())
	require.Len(t, alerts, 1)
	require.Equal(t, TierInitial, alerts[0].Tier)
}

// TestDualFireOrdering verifies that when both thresholds are crossed in a
// single tick (e.g. after a long suspension), both alerts fire back-to-back,
// early warning first.
func TestDualFireOrdering(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})

	alerts := s.Tick(at(1000), DefaultThresholds())
	require.Len(t, alerts, 2)
	require.Equal(t, TierInitial, alerts[0].Tier)
	require.Equal(t, TierCritical, alerts[1].Tier)
	require.Equal(t, alerts[0].ElapsedSeconds, alerts[1].ElapsedSeconds)
	require.NotEqual(t, alerts[0].ID, alerts[1].ID)
}

// TestCustomThresholds verifies the timing knobs are honored independently.
func TestCustomThresholds(t *testing.T) {
	t.Parallel()

	thresholds := Thresholds{
		Initial:          5 * time.Second,
		Critical:         20 * time.Second,
		CriticalCooldown: 30 * time.Second,
	}

	s := New(base)
	s.Observe(at(0), PresenceSignal{Present: true})

	require.Empty(t, s.Tick(at(5), thresholds))
	require.Len(t, s.Tick(at(6), thresholds), 1)
	require.Len(t, s.Tick(at(21), thresholds), 1)
	require.Empty(t, s.Tick(at(51), thresholds))
	require.Len(t, s.Tick(at(52), thresholds), 1)
}

// TestClone verifies Clone copies fields and handles nil safely.
func TestClone(t *testing.T) {
	t.Parallel()

	require.Nil(t, (*Session)(nil).Clone())

	s := New(base)
	s.Observe(at(1), PresenceSignal{Present: true})

	c := s.Clone()
	require.Equal(t, s, c)
	require.NotSame(t, s, c)

	// Mutating the clone must not touch the original.
	c.Observe(at(2), PresenceSignal{Present: false})
	require.True(t, s.PresenceDetected)
}

// TestStillness verifies the diagnostic elapsed-time helper.
func TestStillness(t *testing.T) {
	t.Parallel()

	s := New(base)
	s.Observe(at(10), PresenceSignal{Present: true})
	require.Equal(t, 25*time.Second, s.Stillness(at(35)))
}
