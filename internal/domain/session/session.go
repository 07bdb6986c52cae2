package session

import "time"

// PresenceSignal is one decoded radar reading.
// It is transient and not retained by the state machine.
type PresenceSignal struct {
	// Present reports whether the sensor currently detects a subject.
	Present bool
}

// Thresholds holds the escalation timing knobs.
// All three are independently tunable configuration inputs.
type Thresholds struct {
	// Initial is how long without movement before the early warning fires.
	Initial time.Duration
	// Critical is how long without movement before the emergency fires.
	Critical time.Duration
	// CriticalCooldown is the minimum gap between repeated critical alerts
	// within the same unresolved episode.
	CriticalCooldown time.Duration
}

const (
	// DefaultInitialThreshold is the default delay before the early warning.
	DefaultInitialThreshold = 60 * time.Second
	// DefaultCriticalThreshold is the default delay before the emergency alert.
	DefaultCriticalThreshold = 300 * time.Second
	// DefaultCriticalCooldown is the default gap between repeated critical alerts.
	DefaultCriticalCooldown = 600 * time.Second
)

// DefaultThresholds returns the stock escalation timing.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Initial:          DefaultInitialThreshold,
		Critical:         DefaultCriticalThreshold,
		CriticalCooldown: DefaultCriticalCooldown,
	}
}

// Session is the monitoring state for a single run.
// The derived states are: idle (no presence), active (presence with recent
// movement), initial-alerted, and critically-alerted. They are computed from
// the fields rather than stored.
type Session struct {
	// PresenceDetected reports whether a subject is currently believed present.
	PresenceDetected bool
	// LastMovementTime is the last time any presence reading was observed.
	// Continuous "present" readings count as movement.
	LastMovementTime time.Time
	// LastPresenceTime is the last time presence was observed.
	// Tracked for diagnostics; not consulted by the alert logic.
	LastPresenceTime time.Time
	// InitialAlarmSent debounces the early warning within the current episode.
	InitialAlarmSent bool
	// CriticalAlarmSent debounces the emergency alert within the current episode.
	CriticalAlarmSent bool
	// LastCriticalAlertTime is when the most recent critical alert fired,
	// used for the critical cooldown.
	LastCriticalAlertTime time.Time
}

// New creates a session in the idle state with both timestamps at start.
func New(start time.Time) *Session {
	return &Session{
		LastMovementTime: start,
		LastPresenceTime: start,
	}
}

// Clone returns a copy of the session to avoid leaking internal references.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	cloned := *s

	return &cloned
}

// Observe feeds one decoded signal into the session.
// It returns true when the presence flag flipped, so callers can log the
// transition without inspecting fields.
func (s *Session) Observe(now time.Time, signal PresenceSignal) bool {
	if signal.Present {
		return s.observePresence(now)
	}

	return s.observeAbsence()
}

// observePresence records movement and cancels any in-progress escalation.
func (s *Session) observePresence(now time.Time) bool {
	transitioned := !s.PresenceDetected
	s.PresenceDetected = true

	// Any presence reading implies some movement, even a minimal one.
	if now.After(s.LastMovementTime) {
		s.LastMovementTime = now
	}

	if now.After(s.LastPresenceTime) {
		s.LastPresenceTime = now
	}

	// Fresh movement ends the current no-movement episode.
	if s.InitialAlarmSent || s.CriticalAlarmSent {
		s.InitialAlarmSent = false
		s.CriticalAlarmSent = false
	}

	return transitioned
}

// observeAbsence marks the subject gone and resets the episode.
func (s *Session) observeAbsence() bool {
	if !s.PresenceDetected {
		return false
	}

	s.PresenceDetected = false
	s.InitialAlarmSent = false
	s.CriticalAlarmSent = false

	return true
}

// Tick evaluates escalation at the given instant and returns zero or more
// alerts, early warning before emergency. Both tiers are checked
// independently, so a long stall can fire both in the same tick.
// No alerts are produced while the subject is absent.
func (s *Session) Tick(now time.Time, thresholds Thresholds) []AlertEvent {
	if !s.PresenceDetected {
		return nil
	}

	var (
		elapsed = now.Sub(s.LastMovementTime)
		alerts  []AlertEvent
	)

	if elapsed > thresholds.Initial && !s.InitialAlarmSent {
		alerts = append(alerts, newInitialAlert(now, elapsed))
		s.InitialAlarmSent = true
	}

	if elapsed > thresholds.Critical &&
		(!s.CriticalAlarmSent || now.Sub(s.LastCriticalAlertTime) > thresholds.CriticalCooldown) {
		alerts = append(alerts, newCriticalAlert(now, elapsed))
		s.CriticalAlarmSent = true
		s.LastCriticalAlertTime = now
	}

	return alerts
}

// Stillness returns how long the subject has been without observed movement.
func (s *Session) Stillness(now time.Time) time.Duration {
	return now.Sub(s.LastMovementTime)
}
