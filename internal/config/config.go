package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "stickycost/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "STICKYCOST"

// Supported values for AnalysisConfig.CostVariable.
const (
	CostOperating = "Driftskostnader"
	CostGoods     = "Varekostnader"
)

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Reference ReferenceConfig `yaml:"reference" envconfig:"REFERENCE"`
	Analysis  AnalysisConfig  `yaml:"analysis" envconfig:"ANALYSIS"`
	Output    OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/stickycost.log"`
}

// PathsConfig contains file system paths configuration. Relative paths are
// resolved against BaseDir, or the executable directory when BaseDir is empty.
type PathsConfig struct {
	BaseDir       string `yaml:"base_dir" envconfig:"BASE_DIR"`
	ExtractsDir   string `yaml:"extracts_dir" envconfig:"EXTRACTS_DIR" default:"data/extracts"`
	ReferenceDir  string `yaml:"reference_dir" envconfig:"REFERENCE_DIR" default:"data/reference"`
	ProcessedFile string `yaml:"processed_file" envconfig:"PROCESSED_FILE" default:"data/processed/panel.csv"`
	ResultsDir    string `yaml:"results_dir" envconfig:"RESULTS_DIR" default:"results"`
	LogsDir       string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
}

// ReferenceConfig names the reference tables inside Paths.ReferenceDir.
type ReferenceConfig struct {
	CPIFile string `yaml:"cpi_file" envconfig:"CPI_FILE" default:"03013_cpi.csv" validate:"required"`
	GDPFile string `yaml:"gdp_file" envconfig:"GDP_FILE" default:"GDP.csv" validate:"required"`
}

// AnalysisConfig holds the study parameters.
type AnalysisConfig struct {
	CostVariable         string  `yaml:"cost_variable" envconfig:"COST_VARIABLE" default:"Varekostnader" validate:"required,oneof=Driftskostnader Varekostnader"`
	FirstYear            int     `yaml:"first_year" envconfig:"FIRST_YEAR" default:"2008" validate:"gte=1900"`
	LastYear             int     `yaml:"last_year" envconfig:"LAST_YEAR" default:"2021" validate:"gtefield=FirstYear"`
	MinPayroll           float64 `yaml:"min_payroll" envconfig:"MIN_PAYROLL" default:"5000000" validate:"gte=0"`
	YearFixedEffects     bool    `yaml:"year_fixed_effects" envconfig:"YEAR_FIXED_EFFECTS" default:"true"`
	IndustryFixedEffects bool    `yaml:"industry_fixed_effects" envconfig:"INDUSTRY_FIXED_EFFECTS" default:"true"`
	Decimals             int     `yaml:"decimals" envconfig:"DECIMALS" default:"3" validate:"gte=0,lte=10"`
	DecimalSeparator     string  `yaml:"decimal_separator" envconfig:"DECIMAL_SEPARATOR" default:"," validate:"len=1"`
}

// OutputConfig selects the artifact formats written by the analysis run.
type OutputConfig struct {
	Formats []string `yaml:"formats" envconfig:"FORMATS" default:"xlsx" validate:"min=1,dive,oneof=xlsx csv"`
}

// TelemetryConfig controls tracing and the batch metrics textfile.
type TelemetryConfig struct {
	TraceExporter string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" default:"none" validate:"oneof=none stdout"`
	MetricsFile   string `yaml:"metrics_file" envconfig:"METRICS_FILE"`
}

// Load loads configuration from defaults, environment variables and, when
// filePath is non-empty, a YAML file.
func Load(filePath string) (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if filePath != "" {
		if err := loadFromFile(filePath, &cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("file", filePath)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// loadFromFile overlays the keys present in a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and returns a CONFIG error describing
// every failed constraint.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		ve, ok := err.(validator.ValidationErrors)
		if !ok {
			return apperrors.NewConfigError("config validation failed", err)
		}

		msgs := make([]string, 0, len(ve))
		for _, fe := range ve {
			msgs = append(msgs, describeFieldError(fe))
		}
		return apperrors.NewConfigError("config validation failed", fmt.Errorf("%s", strings.Join(msgs, "; ")))
	}
	return nil
}

func describeFieldError(fe validator.FieldError) string {
	if fe.StructField() == "CostVariable" {
		return fmt.Sprintf("analysis.cost_variable must be %q or %q, got %q",
			CostOperating, CostGoods, fe.Value())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s (value %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s (value %v)", fe.Namespace(), fe.Tag(), fe.Value())
}
