// Package config loads the edacli configuration.
//
// # Configuration Sources
//
// Values are resolved in increasing order of precedence:
//
//  1. Default() values
//  2. A YAML file (the -config flag, EDA_CONFIG_FILE, eda.yaml or configs/eda.yaml)
//  3. A .env file in the working directory (never overrides variables already set)
//  4. EDA_* environment variables
//
// Command line flags are applied by the caller after Load returns.
//
// # Environment Variables
//
// Variables are named after the YAML section and key:
//
//	EDA_DATASET_PATH=data/raw/Concrete_Data_Yeh.csv
//	EDA_DATASET_NA_VALUES=?,missing
//	EDA_REPORT_PREVIEW_ROWS=10
//	EDA_LOGGING_LEVEL=debug
//	EDA_TELEMETRY_TRACING_ENABLED=true
//
// # Validation
//
// Load finishes with Validate, which checks the struct tags with
// go-playground/validator. Every failure is returned as a CONFIG AppError.
package config
