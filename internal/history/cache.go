// Package history persists a bounded log of past runs so later invocations
// can show when the host was last reconciled and how it went.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	fileVersion = "1.0"
	// DefaultLimit is the number of runs kept on disk.
	DefaultLimit = 20
)

// DefaultPath returns <user config dir>/nosleep/status.json.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, "nosleep", "status.json"), nil
}

// StatusCache persists run history between invocations. Newest runs come
// first.
type StatusCache struct {
	path  string
	limit int
	mu    sync.RWMutex
	runs  []Run
}

// NewStatusCache creates a StatusCache and loads it from disk. A missing file
// starts an empty history.
func NewStatusCache(path string) (*StatusCache, error) {
	c := &StatusCache{path: path, limit: DefaultLimit}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := c.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	return c, nil
}

// Load reads the cache from disk
func (c *StatusCache) Load() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse status cache: %w", err)
	}
	c.runs = file.Runs
	return nil
}

// Save writes the cache to disk atomically
func (c *StatusCache) Save() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := json.MarshalIndent(File{Version: fileVersion, Runs: c.runs}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal status cache: %w", err)
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, c.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

// Record prepends run and trims the history to the limit.
func (c *StatusCache) Record(run Run) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.runs = append([]Run{run}, c.runs...)
	if len(c.runs) > c.limit {
		c.runs = c.runs[:c.limit]
	}
}

// Runs returns a copy of the history, newest first.
func (c *StatusCache) Runs() []Run {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Run(nil), c.runs...)
}

// Latest returns the most recent run of command, or of any command when
// command is empty.
func (c *StatusCache) Latest(command string) (Run, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, run := range c.runs {
		if command == "" || run.Command == command {
			return run, true
		}
	}
	return Run{}, false
}

// Clear removes every recorded run.
func (c *StatusCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runs = nil
}
