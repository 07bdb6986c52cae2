// Package session contains the core domain types for presence monitoring.
//
// It defines PresenceSignal (one decoded radar reading), Session (the
// mutable monitoring state for a single run), Thresholds (escalation
// timing), and AlertEvent (an emitted alert). The state machine is pure:
// every transition takes an explicit "now" and performs no I/O, which keeps
// escalation timing fully deterministic under test.
package session
