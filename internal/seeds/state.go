package seeds

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/danmuck/seedctl/internal/project"
	"github.com/pelletier/go-toml/v2"
)

const (
	StateDir  = ".seedctl"
	StateFile = "seed-state.toml"
)

// State is the marker written after a successful seed run.
type State struct {
	ProjectType project.Type `toml:"project_type"`
	Env         string       `toml:"env"`
	Command     string       `toml:"command"`
	SeededAt    time.Time    `toml:"seeded_at"`
}

func statePath(projectPath string) string {
	return filepath.Join(projectPath, StateDir, StateFile)
}

// LoadState reads the marker. A missing marker returns ok=false and no error.
func LoadState(projectPath string) (State, bool, error) {
	data, err := os.ReadFile(statePath(projectPath))
	if errors.Is(err, fs.ErrNotExist) {
		return State{}, false, nil
	}
	if err != nil {
		return State{}, false, fmt.Errorf("seed state read failed: %w", err)
	}
	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return State{}, false, fmt.Errorf("seed state parse failed: %w", err)
	}
	return st, true, nil
}

// SaveState writes the marker, creating the state directory if needed.
func SaveState(projectPath string, st State) error {
	data, err := toml.Marshal(st)
	if err != nil {
		return fmt.Errorf("seed state encode failed: %w", err)
	}
	dir := filepath.Join(projectPath, StateDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("seed state dir failed: %w", err)
	}
	tmp := statePath(projectPath) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("seed state write failed: %w", err)
	}
	if err := os.Rename(tmp, statePath(projectPath)); err != nil {
		return fmt.Errorf("seed state write failed: %w", err)
	}
	return nil
}

// Matches reports whether the marker records a seed of kind for env.
func (s State) Matches(kind project.Type, env string) bool {
	return s.ProjectType == kind && s.Env == env
}
