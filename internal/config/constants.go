package config

// Application constants
const (
	AppName    = "member-rank"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable, e.g. MEMBERRANK_LOGGING_LEVEL.
	EnvPrefix = "MEMBERRANK"

	// ConfigFileEnv overrides the YAML config file location.
	ConfigFileEnv = "MEMBERRANK_CONFIG_FILE"

	// DotEnvFile is loaded into the process environment when present.
	DotEnvFile = ".env"

	// Engine limits
	DefaultTopN                  = 20
	DefaultTrendPointCap         = 90
	DefaultCrossPeriodTopBrokers = 20
	DefaultShareSlices           = 5
	DefaultWindow                = "month"

	// Trading calendar of the Shanghai exchanges, used for Chinese futures.
	DefaultCalendarMIC = "xshg"
	DefaultTimezone    = "Asia/Shanghai"

	// Source loading
	DefaultLoaderConcurrency = 4

	// File Paths (relative to the base directory)
	DefaultDataDir    = "data"
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "logs/member-rank.log"

	// Log rotation
	MaxLogFileSizeMB = 100
	MaxLogAgeDays    = 30
	MaxLogBackups    = 10
)
