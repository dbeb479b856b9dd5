package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ayham/sitekit/internal/domain"
	"github.com/gofrs/flock"
	"github.com/spf13/afero"
)

const (
	// stateSchemaVersion guards against loading checkpoints written by an
	// incompatible binary.
	stateSchemaVersion = "1.0.0"
	stateFilePerm      = 0600
	stateDirPerm       = 0700
	lockTimeout        = 30 * time.Second
	lockRetryInterval  = 100 * time.Millisecond
)

// StateRepository persists pipeline run checkpoints so a failed run can be
// inspected and its deploy rolled back later.
type StateRepository interface {
	Save(ctx context.Context, state *domain.PipelineState) error
	Load(ctx context.Context, sessionID string) (*domain.PipelineState, error)
	LoadLatest(ctx context.Context) (*domain.PipelineState, error)
	Delete(ctx context.Context, sessionID string) error
	Exists(ctx context.Context, sessionID string) (bool, error)
}

type stateEnvelope struct {
	SchemaVersion string                `json:"schema_version"`
	Checksum      string                `json:"checksum"`
	UpdatedAt     time.Time             `json:"updated_at"`
	State         *domain.PipelineState `json:"state"`
}

// JSONStateRepository stores one JSON file per session under stateDir, with
// flock-based exclusion against concurrent pipeline invocations.
type JSONStateRepository struct {
	fs       afero.Fs
	stateDir string
	mu       sync.Mutex
}

// NewJSONStateRepository creates a JSON-file state repository.
func NewJSONStateRepository(fs afero.Fs, stateDir string) StateRepository {
	if stateDir == "" {
		stateDir = ".sitekit-state"
	}
	return &JSONStateRepository{fs: fs, stateDir: stateDir}
}

// Save writes the state atomically (temp file + rename) under a file lock
// and repoints the latest marker at it.
func (r *JSONStateRepository) Save(ctx context.Context, state *domain.PipelineState) error {
	if err := r.fs.MkdirAll(r.stateDir, stateDirPerm); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}
	filename := r.stateFile(state.SessionID)
	return r.withLock(ctx, state.SessionID, false, func() error {
		payload, err := json.Marshal(state)
		if err != nil {
			return fmt.Errorf("failed to marshal state: %w", err)
		}
		envelope := stateEnvelope{
			SchemaVersion: stateSchemaVersion,
			Checksum:      checksum(payload),
			UpdatedAt:     time.Now(),
			State:         state,
		}
		data, err := json.MarshalIndent(envelope, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal state envelope: %w", err)
		}
		tempFile := filename + ".tmp"
		if err := afero.WriteFile(r.fs, tempFile, data, stateFilePerm); err != nil {
			return fmt.Errorf("failed to write temp state file: %w", err)
		}
		if err := r.fs.Rename(tempFile, filename); err != nil {
			if removeErr := r.fs.Remove(tempFile); removeErr != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
			}
			return fmt.Errorf("failed to rename state file: %w", err)
		}
		return r.updateLatestMarker(filename)
	})
}

// Load reads and validates a session's checkpoint.
func (r *JSONStateRepository) Load(ctx context.Context, sessionID string) (*domain.PipelineState, error) {
	var state *domain.PipelineState
	err := r.withLock(ctx, sessionID, true, func() error {
		data, err := afero.ReadFile(r.fs, r.stateFile(sessionID))
		if err != nil {
			if os.IsNotExist(err) {
				return fmt.Errorf("state not found for session %s", sessionID)
			}
			return fmt.Errorf("failed to read state file: %w", err)
		}
		var envelope stateEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return fmt.Errorf("failed to unmarshal state envelope: %w", err)
		}
		if envelope.SchemaVersion != stateSchemaVersion {
			return fmt.Errorf("incompatible state schema: expected %s, got %s",
				stateSchemaVersion, envelope.SchemaVersion)
		}
		payload, err := json.Marshal(envelope.State)
		if err != nil {
			return fmt.Errorf("failed to marshal state for checksum validation: %w", err)
		}
		if envelope.Checksum != checksum(payload) {
			return fmt.Errorf("state checksum mismatch: data may be corrupted")
		}
		state = envelope.State
		return nil
	})
	return state, err
}

// LoadLatest loads the checkpoint pointed at by the latest marker.
func (r *JSONStateRepository) LoadLatest(ctx context.Context) (*domain.PipelineState, error) {
	r.mu.Lock()
	data, err := afero.ReadFile(r.fs, r.latestMarker())
	r.mu.Unlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no previous pipeline state found")
		}
		return nil, fmt.Errorf("failed to read latest marker: %w", err)
	}
	sessionID := sessionFromFilename(string(data))
	if sessionID == "" {
		return nil, fmt.Errorf("invalid latest marker target: %s", string(data))
	}
	return r.Load(ctx, sessionID)
}

// Delete removes a session's checkpoint and its lock file.
func (r *JSONStateRepository) Delete(ctx context.Context, sessionID string) error {
	err := r.withLock(ctx, sessionID, false, func() error {
		if err := r.fs.Remove(r.stateFile(sessionID)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete state file: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if removeErr := r.fs.Remove(r.lockFile(sessionID)); removeErr != nil && !os.IsNotExist(removeErr) {
		fmt.Fprintf(os.Stderr, "warning: failed to remove lock file: %v\n", removeErr)
	}
	return nil
}

// Exists reports whether a checkpoint exists for the session.
func (r *JSONStateRepository) Exists(_ context.Context, sessionID string) (bool, error) {
	_, err := r.fs.Stat(r.stateFile(sessionID))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check state file: %w", err)
	}
	return true, nil
}

// withLock runs fn while holding the session's flock. shared selects a read
// lock. Lock acquisition polls so it honors context cancellation.
func (r *JSONStateRepository) withLock(ctx context.Context, sessionID string, shared bool, fn func() error) error {
	lock := flock.New(r.lockFile(sessionID))
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	try := lock.TryLock
	if shared {
		try = lock.TryRLock
	}
	ticker := time.NewTicker(lockRetryInterval)
	defer ticker.Stop()
	for {
		select {
		case <-lockCtx.Done():
			return fmt.Errorf("could not acquire state lock: %w", lockCtx.Err())
		case <-ticker.C:
		}
		locked, err := try()
		if err != nil {
			return fmt.Errorf("failed to acquire state lock: %w", err)
		}
		if locked {
			break
		}
	}
	defer func() {
		if unlockErr := lock.Unlock(); unlockErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to unlock state file: %v\n", unlockErr)
		}
	}()
	return fn()
}

func (r *JSONStateRepository) updateLatestMarker(target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	marker := r.latestMarker()
	tempMarker := marker + ".tmp"
	if err := afero.WriteFile(r.fs, tempMarker, []byte(target), stateFilePerm); err != nil {
		return fmt.Errorf("failed to write temp latest marker: %w", err)
	}
	if err := r.fs.Rename(tempMarker, marker); err != nil {
		if removeErr := r.fs.Remove(tempMarker); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp marker: %v\n", removeErr)
		}
		return fmt.Errorf("failed to update latest marker: %w", err)
	}
	return nil
}

func (r *JSONStateRepository) stateFile(sessionID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf("run-%s.json", sessionID))
}

func (r *JSONStateRepository) lockFile(sessionID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf(".run-%s.lock", sessionID))
}

func (r *JSONStateRepository) latestMarker() string {
	return filepath.Join(r.stateDir, "latest.txt")
}

func checksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func sessionFromFilename(filename string) string {
	base := filepath.Base(filename)
	if len(base) > 9 && base[:4] == "run-" && base[len(base)-5:] == ".json" {
		return base[4 : len(base)-5]
	}
	return ""
}
