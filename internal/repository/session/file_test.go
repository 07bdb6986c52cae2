package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
)

// TestLoadMissing verifies a fresh path reports ErrNotFound.
func TestLoadMissing(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "session.json"))

	_, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
}

// TestSaveLoadRoundtrip verifies a session survives persistence intact.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	repo := NewFileRepository(path)

	start := time.Date(2025, time.March, 14, 9, 0, 0, 0, time.UTC)
	s := domain.New(start)
	s.Observe(start.Add(10*time.Second), domain.PresenceSignal{Present: true})
	_ = s.Tick(start.Add(400*time.Second), domain.DefaultThresholds())

	require.NoError(t, repo.Save(context.Background(), s))

	loaded, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, s, loaded)

	// A restored session continues the episode: the critical cooldown is
	// still armed from before the restart.
	require.Empty(t, loaded.Tick(start.Add(500*time.Second), domain.DefaultThresholds()))
}

// TestLoadCorrupt verifies malformed snapshots surface a decode error.
func TestLoadCorrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	repo := NewFileRepository(path)

	_, err := repo.Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
