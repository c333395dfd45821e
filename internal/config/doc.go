// Package config provides centralized configuration management for the
// panel preparation and analysis executables.
//
// # Configuration Sources
//
// Configuration is assembled in three layers:
//
//  1. Default values from the struct tags
//  2. Environment variables (STICKYCOST_* namespace)
//  3. An optional YAML file, whose keys override the layers above
//
// # Environment Variables
//
// Variables follow the nested struct layout:
//
//	STICKYCOST_ANALYSIS_COST_VARIABLE=Driftskostnader
//	STICKYCOST_ANALYSIS_MIN_PAYROLL=5000000
//	STICKYCOST_LOGGING_LEVEL=debug
//	STICKYCOST_PATHS_BASE_DIR=/srv/study
//
// # Validation
//
// After loading, the struct is validated with go-playground/validator. The
// cost variable selector is the only choice the study leaves to the operator
// and must be one of the two supported cost fields; any other value is a
// CONFIG error raised before any data is read.
//
// # Path Management
//
// Paths resolves every configured location against a base directory (the
// executable directory unless paths.base_dir is set), mirroring the layout:
//
//	<base>/
//	  ├── data/
//	  │   ├── extracts/     (yearly accounting extracts, one CSV per year)
//	  │   ├── reference/    (CPI and GDP tables)
//	  │   └── processed/    (panel with deflated fields and lags)
//	  ├── results/          (result and sample selection tables)
//	  └── logs/
package config
