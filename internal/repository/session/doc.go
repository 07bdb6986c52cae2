// Package session implements optional persistence for the monitoring session.
//
// The FileRepository stores and loads the session as JSON on disk and
// exposes a Repository interface the monitor service depends on. Persistence
// is opt-in: without a configured snapshot path the session is in-memory
// only and a restart starts a fresh episode.
package session
