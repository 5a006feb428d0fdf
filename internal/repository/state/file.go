package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/vigilz/homebase/internal/config"
	"github.com/vigilz/homebase/internal/domain/threat"
)

// Repository defines persistence operations for the alarm state.
type Repository interface {
	Load(ctx context.Context) (*threat.AlarmState, error)
	Save(ctx context.Context, state *threat.AlarmState) error
}

// FileRepository persists the alarm state to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON state file.
	path string
	// mu protects concurrent access to the state file.
	mu sync.Mutex
}

// ErrNotFound is returned when the state file does not exist yet.
var ErrNotFound = errors.New("state not found")

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the state from disk.
func (r *FileRepository) Load(_ context.Context) (*threat.AlarmState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	var state threat.AlarmState
	if err = json.Unmarshal(contents, &state); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	return &state, nil
}

// Save writes the state to disk using JSON representation.
func (r *FileRepository) Save(_ context.Context, state *threat.AlarmState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}

	return nil
}
