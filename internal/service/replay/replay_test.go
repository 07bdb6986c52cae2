package replay

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
)

// writeLog drops a frame log into a temp dir and returns its path.
func writeLog(t *testing.T, lines ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "frames.log")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	return path
}

// TestReplayEscalates verifies a recorded stall produces both tiers at the
// simulated times, with malformed lines skipped.
func TestReplayEscalates(t *testing.T) {
	t.Parallel()

	path := writeLog(t,
		"# recorded 2025-03-14",
		"2025-03-14T09:00:00Z,SJYBSS,1",
		"not-a-timestamp,SJYBSS,1",
		"garbage without comma",
		"2025-03-14T09:10:00Z,SJYBSS,0",
	)

	var out strings.Builder

	summary, err := Run(context.Background(), &Options{
		InputPath:  path,
		Thresholds: session.DefaultThresholds(),
		Output:     &out,
	})
	require.NoError(t, err)

	require.Equal(t, 2, summary.Frames)
	require.Equal(t, 2, summary.Signals)
	require.Equal(t, 1, summary.Initial)
	require.Equal(t, 1, summary.Critical)

	report := out.String()
	require.Contains(t, report, "2025-03-14T09:01:01Z")
	require.Contains(t, report, "2025-03-14T09:05:01Z")
}

// TestReplayTail verifies the tail window escalates a stall at the end of
// the recording.
func TestReplayTail(t *testing.T) {
	t.Parallel()

	path := writeLog(t, "2025-03-14T09:00:00Z,SJYBSS,1")

	var out strings.Builder

	summary, err := Run(context.Background(), &Options{
		InputPath:  path,
		Thresholds: session.DefaultThresholds(),
		Tail:       2 * time.Minute,
		Output:     &out,
	})
	require.NoError(t, err)
	require.Equal(t, 1, summary.Initial)
	require.Zero(t, summary.Critical)
}

// TestReplayQuietRecording verifies uneventful logs produce no alerts.
func TestReplayQuietRecording(t *testing.T) {
	t.Parallel()

	path := writeLog(t,
		"2025-03-14T09:00:00Z,SJYBSS,1",
		"2025-03-14T09:00:30Z,SJYBSS,1",
		"2025-03-14T09:01:00Z,SJYBSS,1",
	)

	var out strings.Builder

	summary, err := Run(context.Background(), &Options{
		InputPath:  path,
		Thresholds: session.DefaultThresholds(),
		Output:     &out,
	})
	require.NoError(t, err)
	require.Equal(t, 3, summary.Signals)
	require.Zero(t, summary.Initial)
	require.Zero(t, summary.Critical)
	require.Empty(t, out.String())
}

// TestReplayMissingFile verifies a missing log surfaces an error.
func TestReplayMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), &Options{
		InputPath:  filepath.Join(t.TempDir(), "absent.log"),
		Thresholds: session.DefaultThresholds(),
	})
	require.Error(t, err)
}
