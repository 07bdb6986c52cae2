package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tier is the severity level of an alert.
type Tier string

const (
	// TierInitial is the early warning raised when movement first stops.
	TierInitial Tier = "initial"
	// TierCritical is the emergency raised after prolonged stillness.
	TierCritical Tier = "critical"
)

// AlertEvent describes one alert produced by the state machine.
// Events are immutable; they are handed to dispatchers and then discarded.
type AlertEvent struct {
	// ID uniquely identifies the event for log and queue correlation.
	ID string
	// Tier is the severity of the alert.
	Tier Tier
	// Subject is a short human-readable headline for the alert.
	Subject string
	// Message is the full alert text.
	Message string
	// ElapsedSeconds is how long the subject had been motionless when the alert fired.
	ElapsedSeconds int
	// Timestamp is when the alert fired.
	Timestamp time.Time
}

// newInitialAlert builds the early-warning event for the given stillness duration.
func newInitialAlert(now time.Time, elapsed time.Duration) AlertEvent {
	seconds := int(elapsed.Seconds())

	return AlertEvent{
		ID:      uuid.NewString(),
		Tier:    TierInitial,
		Subject: "Motion Sensor - Initial Alert",
		Message: fmt.Sprintf(
			"A person has been detected with no movement for %d seconds.\n"+
				"This may indicate a person is unconscious or in need of assistance.",
			seconds),
		ElapsedSeconds: seconds,
		Timestamp:      now,
	}
}

// newCriticalAlert builds the emergency event for the given stillness duration.
func newCriticalAlert(now time.Time, elapsed time.Duration) AlertEvent {
	seconds := int(elapsed.Seconds())

	return AlertEvent{
		ID:      uuid.NewString(),
		Tier:    TierCritical,
		Subject: "EMERGENCY - Potential Medical Emergency Detected",
		Message: fmt.Sprintf(
			"URGENT: A person has been detected with absolutely no movement for %d seconds.\n"+
				"This may indicate a serious medical emergency requiring immediate attention.",
			seconds),
		ElapsedSeconds: seconds,
		Timestamp:      now,
	}
}
