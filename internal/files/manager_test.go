package files

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stickycost/internal/config"
)

func testPaths(base string) *config.Paths {
	return &config.Paths{
		BaseDir:       base,
		ExtractsDir:   filepath.Join(base, "data", "extracts"),
		ReferenceDir:  filepath.Join(base, "data", "reference"),
		ProcessedFile: filepath.Join(base, "data", "processed", "panel.csv"),
		ResultsDir:    filepath.Join(base, "results"),
		LogsDir:       filepath.Join(base, "logs"),
	}
}

func TestNewManager(t *testing.T) {
	paths := testPaths(t.TempDir())
	m := NewManager(paths, nil)

	require.NotNil(t, m)
	assert.Equal(t, paths, m.paths)
	assert.NotNil(t, m.logger)
}

func TestPathResolution(t *testing.T) {
	base := t.TempDir()
	m := NewManager(testPaths(base), nil)

	tests := []struct {
		path     string
		expected string
	}{
		{"extracts/2010.csv", filepath.Join(base, "data", "extracts", "2010.csv")},
		{"reference/GDP.csv", filepath.Join(base, "data", "reference", "GDP.csv")},
		{"results/Results_Varekostnader.xlsx", filepath.Join(base, "results", "Results_Varekostnader.xlsx")},
		{"logs/run.log", filepath.Join(base, "logs", "run.log")},
		{"other/file.txt", filepath.Join(base, "other", "file.txt")},
		{"/abs/path.csv", "/abs/path.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, m.ResolvePath(tt.path))
		})
	}
}

func TestWriteAtomic(t *testing.T) {
	base := t.TempDir()
	m := NewManager(testPaths(base), nil)
	target := filepath.Join(base, "data", "processed", "panel.csv")

	err := m.WriteAtomic(target, func(w io.Writer) error {
		_, err := io.WriteString(w, "orgnr;regnaar\n")
		return err
	})
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "orgnr;regnaar\n", string(data))
	assert.True(t, m.FileExists(target))

	size, err := m.GetFileSize(target)
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), size)

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file should be removed")
}

func TestWriteAtomicFailureKeepsExistingFile(t *testing.T) {
	base := t.TempDir()
	m := NewManager(testPaths(base), nil)
	target := filepath.Join(base, "results", "out.csv")
	require.NoError(t, os.MkdirAll(filepath.Dir(target), 0755))
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	boom := errors.New("boom")
	err := m.WriteAtomic(target, func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return boom
	})
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileExistsMissing(t *testing.T) {
	m := NewManager(testPaths(t.TempDir()), nil)
	assert.False(t, m.FileExists("results/missing.xlsx"))

	_, err := m.GetFileSize("results/missing.xlsx")
	assert.Error(t, err)
}
