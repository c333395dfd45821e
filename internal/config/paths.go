package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths.
type Paths struct {
	BaseDir       string
	ExtractsDir   string
	ReferenceDir  string
	ProcessedFile string
	ResultsDir    string
	LogsDir       string
	CPIFile       string
	GDPFile       string
}

// ResolvePaths turns the configured locations into absolute paths.
func ResolvePaths(cfg *Config) (*Paths, error) {
	base := cfg.Paths.BaseDir
	if base == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, fmt.Errorf("failed to get executable path: %w", err)
		}
		exe, err = filepath.EvalSymlinks(exe)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve executable symlinks: %w", err)
		}
		base = filepath.Dir(exe)
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}

	referenceDir := resolve(cfg.Paths.ReferenceDir)
	return &Paths{
		BaseDir:       base,
		ExtractsDir:   resolve(cfg.Paths.ExtractsDir),
		ReferenceDir:  referenceDir,
		ProcessedFile: resolve(cfg.Paths.ProcessedFile),
		ResultsDir:    resolve(cfg.Paths.ResultsDir),
		LogsDir:       resolve(cfg.Paths.LogsDir),
		CPIFile:       joinUnlessAbs(referenceDir, cfg.Reference.CPIFile),
		GDPFile:       joinUnlessAbs(referenceDir, cfg.Reference.GDPFile),
	}, nil
}

func joinUnlessAbs(dir, name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// EnsureDirectories creates the output directories if they don't exist.
// Input directories are left alone; a missing input is reported by the
// validation package instead.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		filepath.Dir(p.ProcessedFile),
		p.ResultsDir,
		p.LogsDir,
	}

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// GetResultsPath returns the path of a file in the results directory
func (p *Paths) GetResultsPath(filename string) string {
	return filepath.Join(p.ResultsDir, filename)
}

// GetLogPath returns the path of a file in the logs directory
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// LogPathResolution logs the resolved paths at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("Resolved paths",
		slog.String("base_dir", p.BaseDir),
		slog.String("extracts_dir", p.ExtractsDir),
		slog.String("reference_dir", p.ReferenceDir),
		slog.String("processed_file", p.ProcessedFile),
		slog.String("results_dir", p.ResultsDir),
		slog.String("logs_dir", p.LogsDir))
}
