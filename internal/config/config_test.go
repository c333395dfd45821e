package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "stickycost/internal/errors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, EnvPrefix+"_") {
			// t.Setenv registers the restore; the unset makes the variable absent.
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		file        string
		wantErr     bool
		wantType    apperrors.ErrorType
		validateCfg func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "info", cfg.Logging.Level)
				assert.Equal(t, "console", cfg.Logging.Output)
				assert.Equal(t, CostGoods, cfg.Analysis.CostVariable)
				assert.Equal(t, 2008, cfg.Analysis.FirstYear)
				assert.Equal(t, 2021, cfg.Analysis.LastYear)
				assert.Equal(t, 5e6, cfg.Analysis.MinPayroll)
				assert.True(t, cfg.Analysis.YearFixedEffects)
				assert.True(t, cfg.Analysis.IndustryFixedEffects)
				assert.Equal(t, 3, cfg.Analysis.Decimals)
				assert.Equal(t, ",", cfg.Analysis.DecimalSeparator)
				assert.Equal(t, []string{"xlsx"}, cfg.Output.Formats)
				assert.Equal(t, "none", cfg.Telemetry.TraceExporter)
				assert.Equal(t, "data/processed/panel.csv", cfg.Paths.ProcessedFile)
			},
		},
		{
			name: "environment overrides defaults",
			env: map[string]string{
				"STICKYCOST_ANALYSIS_COST_VARIABLE": "Driftskostnader",
				"STICKYCOST_ANALYSIS_MIN_PAYROLL":   "0",
				"STICKYCOST_OUTPUT_FORMATS":         "xlsx,csv",
				"STICKYCOST_LOGGING_LEVEL":          "debug",
			},
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, CostOperating, cfg.Analysis.CostVariable)
				assert.Equal(t, 0.0, cfg.Analysis.MinPayroll)
				assert.Equal(t, []string{"xlsx", "csv"}, cfg.Output.Formats)
				assert.Equal(t, "debug", cfg.Logging.Level)
			},
		},
		{
			name: "file overlays environment",
			env: map[string]string{
				"STICKYCOST_ANALYSIS_DECIMALS": "4",
			},
			file: `
analysis:
  cost_variable: Driftskostnader
  first_year: 2010
  industry_fixed_effects: false
paths:
  base_dir: /srv/study
`,
			validateCfg: func(t *testing.T, cfg *Config) {
				assert.Equal(t, CostOperating, cfg.Analysis.CostVariable)
				assert.Equal(t, 2010, cfg.Analysis.FirstYear)
				assert.False(t, cfg.Analysis.IndustryFixedEffects)
				assert.True(t, cfg.Analysis.YearFixedEffects)
				assert.Equal(t, 4, cfg.Analysis.Decimals)
				assert.Equal(t, "/srv/study", cfg.Paths.BaseDir)
			},
		},
		{
			name: "invalid cost variable is a config error",
			env: map[string]string{
				"STICKYCOST_ANALYSIS_COST_VARIABLE": "Lonnskostnader",
			},
			wantErr:  true,
			wantType: apperrors.ErrTypeConfig,
		},
		{
			name:     "last year before first year",
			file:     "analysis:\n  first_year: 2015\n  last_year: 2012\n",
			wantErr:  true,
			wantType: apperrors.ErrTypeConfig,
		},
		{
			name:     "unknown output format",
			file:     "output:\n  formats: [pdf]\n",
			wantErr:  true,
			wantType: apperrors.ErrTypeConfig,
		},
		{
			name:     "malformed yaml",
			file:     "analysis: [unterminated",
			wantErr:  true,
			wantType: apperrors.ErrTypeConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			var path string
			if tt.file != "" {
				path = writeConfigFile(t, tt.file)
			}

			cfg, err := Load(path)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.wantType), "got %v", err)
				return
			}
			require.NoError(t, err)
			tt.validateCfg(t, cfg)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeConfig, apperrors.TypeOf(err))
}

func TestValidate_CostVariableMessage(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Analysis.CostVariable = "Salg"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `analysis.cost_variable must be "Driftskostnader" or "Varekostnader", got "Salg"`)
}

func TestResolvePaths(t *testing.T) {
	clearEnv(t)
	base := t.TempDir()
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Paths.BaseDir = base
	cfg.Reference.GDPFile = "/abs/gdp.csv"

	paths, err := ResolvePaths(cfg)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, "data", "extracts"), paths.ExtractsDir)
	assert.Equal(t, filepath.Join(base, "data", "processed", "panel.csv"), paths.ProcessedFile)
	assert.Equal(t, filepath.Join(base, "data", "reference", "03013_cpi.csv"), paths.CPIFile)
	assert.Equal(t, "/abs/gdp.csv", paths.GDPFile)
	assert.Equal(t, filepath.Join(base, "results", "Results_x.xlsx"), paths.GetResultsPath("Results_x.xlsx"))

	require.NoError(t, paths.EnsureDirectories())
	for _, dir := range []string{filepath.Dir(paths.ProcessedFile), paths.ResultsDir, paths.LogsDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}
}
