package config

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "edacli/internal/errors"
)

// EnvPrefix namespaces every environment variable read by Load.
const EnvPrefix = "EDA"

// DefaultDatasetPath is the dataset summarized when nothing else is configured.
const DefaultDatasetPath = "data/raw/Concrete_Data_Yeh.csv"

// Config represents the complete application configuration
type Config struct {
	Dataset   DatasetConfig   `yaml:"dataset" envconfig:"DATASET"`
	Report    ReportConfig    `yaml:"report" envconfig:"REPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// DatasetConfig describes the input file and how to parse it
type DatasetConfig struct {
	Path          string   `yaml:"path" split_words:"true" validate:"required"`
	Sheet         string   `yaml:"sheet" split_words:"true"`
	Delimiter     string   `yaml:"delimiter" split_words:"true"`
	NAValues      []string `yaml:"na_values" split_words:"true"`
	KeepDefaultNA bool     `yaml:"keep_default_na" split_words:"true"`
}

// ReportConfig controls what gets printed
type ReportConfig struct {
	PreviewRows int  `yaml:"preview_rows" split_words:"true" validate:"gte=0"`
	Describe    bool `yaml:"describe" split_words:"true"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" split_words:"true" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" split_words:"true" validate:"oneof=json text"`
	Output   string `yaml:"output" split_words:"true" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" split_words:"true" validate:"required_unless=Output console"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName     string  `yaml:"service_name" split_words:"true" validate:"required"`
	Environment     string  `yaml:"environment" split_words:"true"`
	TracingEnabled  bool    `yaml:"tracing_enabled" split_words:"true"`
	TraceExporter   string  `yaml:"trace_exporter" split_words:"true" validate:"oneof=stdout none"`
	SampleRatio     float64 `yaml:"sample_ratio" split_words:"true" validate:"gte=0,lte=1"`
	MetricsTextfile string  `yaml:"metrics_textfile" split_words:"true"`
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path:          DefaultDatasetPath,
			KeepDefaultNA: true,
		},
		Report: ReportConfig{
			PreviewRows: 5,
		},
		Logging: LoggingConfig{
			Level:    "warn",
			Format:   "json",
			Output:   "console",
			FilePath: "logs/edacli.log",
		},
		Telemetry: TelemetryConfig{
			ServiceName:   "edacli",
			Environment:   "development",
			TraceExporter: "stdout",
			SampleRatio:   1.0,
		},
	}
}

// Load builds the configuration from defaults, an optional YAML file, an
// optional .env file and EDA_* environment variables, in increasing order of
// precedence. configFile may be empty, in which case EDA_CONFIG_FILE and the
// well-known locations are tried.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	if err := loadDotEnv(".env"); err != nil {
		return nil, apperrors.NewConfigError("failed to load .env file", err)
	}

	if configFile == "" {
		configFile = getConfigFilePath()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError("failed to load config from file", err).
				WithContext("path", configFile)
		}
	}

	// Fields without a matching variable are left untouched, so file values
	// and defaults survive. Leaf fields use split_words rather than explicit
	// envconfig names; an explicit name would also be looked up unprefixed
	// and pick up variables like PATH.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadDotEnv loads KEY=VALUE pairs into the process environment without
// overriding variables that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && stderrors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// loadFromFile overlays YAML values onto cfg; keys absent from the file keep
// their current value.
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	return yaml.UnmarshalStrict(data, cfg)
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"eda.yaml",
		"configs/eda.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Validate checks struct constraints and normalizes a few values.
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	c.Logging.Format = strings.ToLower(c.Logging.Format)
	c.Logging.Output = strings.ToLower(c.Logging.Output)

	if d := c.Dataset.Delimiter; d != "" && d != `\t` && len([]rune(d)) != 1 {
		return apperrors.NewConfigError("config validation failed",
			fmt.Errorf("Config.Dataset.Delimiter must be a single character or \\t, got %q", d))
	}
	if r := c.Dataset.DelimiterRune(); c.Dataset.Delimiter != "" && !validDelimiter(r) {
		return apperrors.NewConfigError("config validation failed",
			fmt.Errorf("Config.Dataset.Delimiter cannot be a quote, line break or invalid character, got %q", c.Dataset.Delimiter))
	}

	v := validator.New()
	if err := v.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if stderrors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, formatValidationError(fe))
			}
			return apperrors.NewConfigError("config validation failed", fmt.Errorf("%s", strings.Join(msgs, "; ")))
		}
		return apperrors.NewConfigError("config validation failed", err)
	}

	return nil
}

// validDelimiter mirrors the delimiters encoding/csv accepts.
func validDelimiter(r rune) bool {
	return r != 0 && r != '"' && r != '\r' && r != '\n' && utf8.ValidRune(r) && r != utf8.RuneError
}

func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_unless":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s must be %s %s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Namespace(), fe.Tag())
	}
}

// DelimiterRune returns the configured delimiter, or 0 when the loader
// should pick one from the file extension.
func (d DatasetConfig) DelimiterRune() rune {
	if d.Delimiter == "" {
		return 0
	}
	if d.Delimiter == `\t` {
		return '\t'
	}
	return []rune(d.Delimiter)[0]
}
