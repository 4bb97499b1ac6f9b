package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "github.com/shinnytech/caiwenqiang-member-rank/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine    EngineConfig    `yaml:"engine" envconfig:"ENGINE"`
	Calendar  CalendarConfig  `yaml:"calendar" envconfig:"CALENDAR"`
	Loader    LoaderConfig    `yaml:"loader" envconfig:"LOADER"`
	Export    ExportConfig    `yaml:"export" envconfig:"EXPORT"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
}

// EngineConfig contains the leaderboard and trend limits
type EngineConfig struct {
	TopN                  int    `yaml:"top_n" envconfig:"TOP_N" validate:"min=1,max=200"`
	TrendPointCap         int    `yaml:"trend_point_cap" envconfig:"TREND_POINT_CAP" validate:"min=1,max=3660"`
	CrossPeriodTopBrokers int    `yaml:"cross_period_top_brokers" envconfig:"CROSS_PERIOD_TOP_BROKERS" validate:"min=1,max=500"`
	ShareSlices           int    `yaml:"share_slices" envconfig:"SHARE_SLICES" validate:"min=1,max=50"`
	DefaultWindow         string `yaml:"default_window" envconfig:"DEFAULT_WINDOW" validate:"oneof=week month quarter"`
}

// CalendarConfig selects the trading calendar used to find the previous trading day
type CalendarConfig struct {
	MIC      string `yaml:"mic" envconfig:"MIC" validate:"required"`
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE" validate:"required"`
}

// LoaderConfig contains source loading configuration
type LoaderConfig struct {
	Concurrency int `yaml:"concurrency" envconfig:"CONCURRENCY" validate:"min=1,max=64"`
}

// ExportConfig contains report output configuration
type ExportConfig struct {
	Format    string `yaml:"format" envconfig:"FORMAT" validate:"oneof=csv xlsx json"`
	BOMPrefix bool   `yaml:"bom_prefix" envconfig:"BOM_PREFIX"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level      string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format     string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output     string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout console file both"`
	FilePath   string `yaml:"file_path" envconfig:"FILE_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb" envconfig:"MAX_SIZE_MB" validate:"min=1"`
	MaxAgeDays int    `yaml:"max_age_days" envconfig:"MAX_AGE_DAYS" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" envconfig:"MAX_BACKUPS" validate:"min=0"`
	Compress   bool   `yaml:"compress" envconfig:"COMPRESS"`
}

// TelemetryConfig contains tracing and metrics configuration
type TelemetryConfig struct {
	ServiceName   string  `yaml:"service_name" envconfig:"SERVICE_NAME" validate:"required"`
	Environment   string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	EnableTracing bool    `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	TraceExporter string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	EnableMetrics bool    `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
	MetricsFile   string  `yaml:"metrics_file" envconfig:"METRICS_FILE"`
	SampleRatio   float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO" validate:"min=0,max=1"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	BaseDir    string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir    string `yaml:"data_dir" envconfig:"DATA_DIR"`
	ReportsDir string `yaml:"reports_dir" envconfig:"REPORTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// Load loads configuration from defaults, the config file, a .env file and
// environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit config file. An empty path skips the file.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load config from %s", configFile), err)
		}
	}

	if err := godotenv.Load(DotEnvFile); err != nil && !os.IsNotExist(err) {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to load %s", DotEnvFile), err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, apperrors.NewConfigError("failed to load config from env", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, apperrors.NewConfigError("config validation failed", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML file values onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks field constraints and normalizes aliases
func (c *Config) Validate() error {
	c.Logging.Level = strings.ToLower(c.Logging.Level)
	if c.Logging.Output == "console" {
		c.Logging.Output = "stdout"
	}
	if c.Logging.Output != "stdout" && c.Logging.FilePath == "" {
		c.Logging.FilePath = DefaultLogFile
	}

	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}

	// Check for config file in common locations
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			TopN:                  DefaultTopN,
			TrendPointCap:         DefaultTrendPointCap,
			CrossPeriodTopBrokers: DefaultCrossPeriodTopBrokers,
			ShareSlices:           DefaultShareSlices,
			DefaultWindow:         DefaultWindow,
		},
		Calendar: CalendarConfig{
			MIC:      DefaultCalendarMIC,
			Timezone: DefaultTimezone,
		},
		Loader: LoaderConfig{
			Concurrency: DefaultLoaderConcurrency,
		},
		Export: ExportConfig{
			Format:    "csv",
			BOMPrefix: true,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "json",
			Output:     "stdout",
			FilePath:   DefaultLogFile,
			MaxSizeMB:  MaxLogFileSizeMB,
			MaxAgeDays: MaxLogAgeDays,
			MaxBackups: MaxLogBackups,
			Compress:   true,
		},
		Telemetry: TelemetryConfig{
			ServiceName:   AppName,
			Environment:   "development",
			EnableTracing: false,
			TraceExporter: "none",
			EnableMetrics: true,
			SampleRatio:   1.0,
		},
		Paths: PathsConfig{
			DataDir:    DefaultDataDir,
			ReportsDir: DefaultReportsDir,
			LogsDir:    DefaultLogsDir,
		},
	}
}
