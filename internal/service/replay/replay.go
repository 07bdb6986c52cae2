// Package replay drives the state machine from a recorded frame log with a
// simulated clock, reporting the alerts a live run would have raised. It is
// the offline counterpart of the monitor loop: same parser, same state
// machine, no real time and no dispatchers.
package replay

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/logger"
	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/signal"
)

// tickStep is the simulated clock resolution between recorded frames.
// One second matches the precision of the reported elapsed times.
const tickStep = time.Second

// Options controls a replay run.
type Options struct {
	// InputPath is the recorded frame log. Each line is
	// "<RFC3339 timestamp>,<raw frame>"; blank lines and lines starting
	// with '#' are skipped.
	InputPath string
	// Thresholds are the escalation timing knobs to replay against.
	Thresholds session.Thresholds
	// Tail extends the simulation past the last record, so stalls at the
	// end of a recording still escalate.
	Tail time.Duration
	// Output receives the replayed alert report.
	Output io.Writer
}

// Summary aggregates what a replay produced.
type Summary struct {
	// Frames is the number of log records read.
	Frames int
	// Signals is how many records decoded into presence signals.
	Signals int
	// Initial and Critical count the alerts fired per tier.
	Initial  int
	Critical int
}

// record is one parsed log line.
type record struct {
	at    time.Time
	frame string
}

// Run replays the log and returns the alert summary.
func Run(ctx context.Context, opts *Options) (*Summary, error) {
	ctx = logger.WithName(ctx, "radar-replay")

	records, err := readLog(ctx, opts.InputPath)
	if err != nil {
		return nil, err
	}

	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	summary := &Summary{Frames: len(records)}
	if len(records) == 0 {
		return summary, nil
	}

	state := session.New(records[0].at)
	clock := records[0].at

	emit := func(alerts []session.AlertEvent) {
		for _, alert := range alerts {
			switch alert.Tier {
			case session.TierInitial:
				summary.Initial++
			case session.TierCritical:
				summary.Critical++
			}

			fmt.Fprintf(opts.Output, "%s  [%s]  %s (no movement for %ds)\n",
				alert.Timestamp.Format(time.RFC3339), alert.Tier, alert.Subject, alert.ElapsedSeconds)
		}
	}

	for _, rec := range records {
		// Advance the simulated clock to the record, ticking along the
		// way so alerts fire when they would have, not in one burst.
		for clock.Add(tickStep).Before(rec.at) {
			clock = clock.Add(tickStep)
			emit(state.Tick(clock, opts.Thresholds))
		}

		clock = rec.at

		if sig, ok := signal.Parse(rec.frame); ok {
			summary.Signals++

			state.Observe(clock, sig)
		}

		emit(state.Tick(clock, opts.Thresholds))
	}

	// Optionally keep ticking past the end of the recording.
	end := clock.Add(opts.Tail)
	for clock.Before(end) {
		clock = clock.Add(tickStep)
		emit(state.Tick(clock, opts.Thresholds))
	}

	return summary, nil
}

// readLog parses the recorded frame log.
// Malformed timestamps are reported and skipped; a recording is operator
// input, not a live sensor, so silence would hide real mistakes.
func readLog(ctx context.Context, path string) ([]record, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open frame log: %w", err)
	}

	defer func() {
		_ = f.Close()
	}()

	var (
		records []record
		lineNo  int
	)

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		timestamp, frame, found := strings.Cut(line, ",")
		if !found {
			logger.WarnKV(ctx, "Skipping malformed log line", "line", lineNo)

			continue
		}

		at, err := time.Parse(time.RFC3339, strings.TrimSpace(timestamp))
		if err != nil {
			logger.WarnKV(ctx, "Skipping line with bad timestamp", "line", lineNo, "error", err)

			continue
		}

		records = append(records, record{at: at, frame: frame})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frame log: %w", err)
	}

	return records, nil
}
