// Package history keeps lists of past entries, such as find queries, in
// small TOML files so they survive between runs.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Manager handles loading and saving history to TOML files in one directory
type Manager struct {
	historyDir string
}

// HistoryFile represents the structure of a history TOML file
type HistoryFile struct {
	Entries []string `toml:"entries"`
}

// DefaultDir returns ~/.local/share/doctree/history
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".local", "share", "doctree", "history"), nil
}

// NewManager creates a history manager storing its files in dir, creating
// the directory if needed
func NewManager(dir string) (*Manager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Manager{historyDir: dir}, nil
}

// Load loads history entries from a TOML file. A missing or corrupted file
// yields no entries.
func (m *Manager) Load(filename string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(m.historyDir, filename))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, err
	}

	var histFile HistoryFile
	if err := toml.Unmarshal(data, &histFile); err != nil {
		return []string{}, nil
	}
	return histFile.Entries, nil
}

// Save saves history entries to a TOML file
func (m *Manager) Save(filename string, entries []string) error {
	data, err := toml.Marshal(HistoryFile{Entries: entries})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.historyDir, filename), data, 0o644)
}

// Append adds entry to the end of a history file, dropping an identical
// previous entry and keeping at most limit entries (newest last)
func (m *Manager) Append(filename, entry string, limit int) error {
	entries, err := m.Load(filename)
	if err != nil {
		return err
	}
	kept := entries[:0]
	for _, e := range entries {
		if e != entry {
			kept = append(kept, e)
		}
	}
	kept = append(kept, entry)
	if limit > 0 && len(kept) > limit {
		kept = kept[len(kept)-limit:]
	}
	return m.Save(filename, kept)
}
