package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	Env string // development, staging, production

	// Analysis parameters (YAML)
	AnalysisConfigPath string

	// Metrics sources
	Sources SourcesConfig

	// Outbound HTTP
	HTTP HTTPConfig

	// Watch scheduler
	Watch WatchConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// SourcesConfig locates the collaborators that feed the engine
type SourcesConfig struct {
	MetricsDir     string // <dir>/<SYMBOL>.json
	MetricsBaseURL string // GET <base>/<SYMBOL>
	QuotesFile     string // price/PE/yield overrides
	BenchmarkURL   string // {"yield": 0.013}
}

// HTTPConfig controls the fetch client
type HTTPConfig struct {
	Timeout    time.Duration
	MaxRetries int
	RatePerSec float64
	Burst      int
}

// WatchConfig controls the watchlist scheduler
type WatchConfig struct {
	Schedule    string // cron spec with seconds
	Concurrency int
}

// defaultAnalysisConfig is relative to the module root
const defaultAnalysisConfig = "configs/analysis.yaml"

// AnalysisConfigPath returns $ANALYSIS_CONFIG without requiring the rest of
// the configuration to be valid
func AnalysisConfigPath() string {
	loadEnvFile()
	return getEnv("ANALYSIS_CONFIG", defaultAnalysisConfig)
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	// Try multiple paths for .env file
	loadEnvFile()

	cfg := &Config{
		Env: getEnv("ENV", "development"),

		AnalysisConfigPath: getEnv("ANALYSIS_CONFIG", defaultAnalysisConfig),

		Sources: SourcesConfig{
			MetricsDir:     getEnv("METRICS_DIR", ""),
			MetricsBaseURL: getEnv("METRICS_BASE_URL", ""),
			QuotesFile:     getEnv("QUOTES_FILE", ""),
			BenchmarkURL:   getEnv("BENCHMARK_URL", ""),
		},

		HTTP: HTTPConfig{
			Timeout:    getEnvAsDuration("HTTP_TIMEOUT", "10s"),
			MaxRetries: getEnvAsInt("HTTP_MAX_RETRIES", 3),
			RatePerSec: getEnvAsFloat("FETCH_RATE_PER_SEC", 2),
			Burst:      getEnvAsInt("FETCH_BURST", 4),
		},

		Watch: WatchConfig{
			Schedule:    getEnv("WATCH_SCHEDULE", "0 30 16 * * 1-5"),
			Concurrency: getEnvAsInt("WATCH_CONCURRENCY", 4),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	// Validate configuration
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// At least one metrics collaborator
	if c.Sources.MetricsDir == "" && c.Sources.MetricsBaseURL == "" {
		return fmt.Errorf("METRICS_DIR or METRICS_BASE_URL is required")
	}

	if c.HTTP.RatePerSec <= 0 {
		return fmt.Errorf("FETCH_RATE_PER_SEC must be positive, got %v", c.HTTP.RatePerSec)
	}
	if c.HTTP.Burst < 1 {
		return fmt.Errorf("FETCH_BURST must be at least 1, got %d", c.HTTP.Burst)
	}
	if c.Watch.Concurrency < 1 {
		return fmt.Errorf("WATCH_CONCURRENCY must be at least 1, got %d", c.Watch.Concurrency)
	}

	return nil
}

// IsProduction reports whether ENV=production
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{
		".env",         // Current directory
		"backend/.env", // From project root
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
