// Package signal decodes raw radar frames into presence signals.
//
// The SEN0395 presence output is a line-oriented ASCII protocol: each
// reading is "SJYBSS,<status>" with <status> 1 when a subject is detected
// and 0 otherwise. Anything that does not match the marker and a
// recognized status token is treated as noise and ignored.
package signal

import (
	"strings"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
)

// Marker is the literal tag that prefixes every presence frame.
const Marker = "SJYBSS"

// Parse decodes one text line into a presence signal.
// The second return value is false when the line is not a presence frame;
// such lines carry no signal and raise no error.
func Parse(line string) (session.PresenceSignal, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, Marker+",") {
		return session.PresenceSignal{}, false
	}

	// Some firmware revisions append distance fields after the status
	// token, so only the first field after the marker is examined.
	status := line[len(Marker)+1:]
	if i := strings.IndexByte(status, ','); i >= 0 {
		status = status[:i]
	}

	switch strings.TrimSpace(status) {
	case "1":
		return session.PresenceSignal{Present: true}, true
	case "0":
		return session.PresenceSignal{Present: false}, true
	default:
		return session.PresenceSignal{}, false
	}
}
