package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"stickycost/internal/config"
)

// Manager provides file management operations
type Manager struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{paths: paths, logger: logger}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.ResolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	m.logger.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// WriteAtomic writes a file through fn into a temporary sibling and renames it
// into place once fn and the sync succeed. A failed write leaves any existing
// file untouched.
func (m *Manager) WriteAtomic(path string, fn func(io.Writer) error) error {
	fullPath := m.ResolvePath(path)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(fullPath)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := fn(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync %s: %w", tmpPath, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, fullPath); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	m.logger.Info("Wrote file", slog.String("path", fullPath))
	return nil
}

// GetFileSize returns the size of a file in bytes
func (m *Manager) GetFileSize(path string) (int64, error) {
	info, err := os.Stat(m.ResolvePath(path))
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ResolvePath resolves a path relative to the appropriate base directory.
// The prefixes extracts/, reference/, results/ and logs/ map to the
// configured directories; anything else is relative to the base directory.
func (m *Manager) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "extracts/"):
		return filepath.Join(m.paths.ExtractsDir, strings.TrimPrefix(path, "extracts/"))
	case strings.HasPrefix(path, "reference/"):
		return filepath.Join(m.paths.ReferenceDir, strings.TrimPrefix(path, "reference/"))
	case strings.HasPrefix(path, "results/"):
		return m.paths.GetResultsPath(strings.TrimPrefix(path, "results/"))
	case strings.HasPrefix(path, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(path, "logs/"))
	default:
		return filepath.Join(m.paths.BaseDir, path)
	}
}
