package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/config"
	domain "github.com/kevinyea/Radar-sensor-pi-SEN0395/internal/domain/session"
)

// Repository defines persistence operations for the monitoring session.
type Repository interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
}

// ErrNotFound is returned when no snapshot exists yet.
var ErrNotFound = errors.New("session snapshot not found")

// snapshot is the JSON wire form of a persisted session.
type snapshot struct {
	PresenceDetected      bool      `json:"presence_detected"`
	LastMovementTime      time.Time `json:"last_movement_time"`
	LastPresenceTime      time.Time `json:"last_presence_time"`
	InitialAlarmSent      bool      `json:"initial_alarm_sent"`
	CriticalAlarmSent     bool      `json:"critical_alarm_sent"`
	LastCriticalAlertTime time.Time `json:"last_critical_alert_time"`
}

// FileRepository persists the session as JSON on disk, so a restart during
// an active no-movement episode resumes escalation timing instead of
// resetting it to zero.
type FileRepository struct {
	// path is the filesystem location of the snapshot file.
	path string
	// mu protects concurrent access to the snapshot file.
	mu sync.Mutex
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the snapshot from disk.
func (r *FileRepository) Load(_ context.Context) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read snapshot file: %w", err)
	}

	var snap snapshot
	if err = json.Unmarshal(contents, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot file: %w", err)
	}

	return &domain.Session{
		PresenceDetected:      snap.PresenceDetected,
		LastMovementTime:      snap.LastMovementTime,
		LastPresenceTime:      snap.LastPresenceTime,
		InitialAlarmSent:      snap.InitialAlarmSent,
		CriticalAlarmSent:     snap.CriticalAlarmSent,
		LastCriticalAlertTime: snap.LastCriticalAlertTime,
	}, nil
}

// Save writes the snapshot to disk.
func (r *FileRepository) Save(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(snapshot{
		PresenceDetected:      s.PresenceDetected,
		LastMovementTime:      s.LastMovementTime,
		LastPresenceTime:      s.LastPresenceTime,
		InitialAlarmSent:      s.InitialAlarmSent,
		CriticalAlarmSent:     s.CriticalAlarmSent,
		LastCriticalAlertTime: s.LastCriticalAlertTime,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write snapshot file: %w", err)
	}

	return nil
}
