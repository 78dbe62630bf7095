package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Setenv("METRICS_DIR", "testdata/metrics")

	cfg, err := Load()
	require.NoError(t, err)

	// Check defaults
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "configs/analysis.yaml", cfg.AnalysisConfigPath)
	assert.Equal(t, "testdata/metrics", cfg.Sources.MetricsDir)
	assert.Equal(t, 10*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 2.0, cfg.HTTP.RatePerSec)
	assert.Equal(t, 4, cfg.Watch.Concurrency)
	assert.Equal(t, "0 30 16 * * 1-5", cfg.Watch.Schedule)
	assert.False(t, cfg.IsProduction())
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("METRICS_BASE_URL", "http://metrics.local/v1")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("FETCH_RATE_PER_SEC", "0.5")
	t.Setenv("WATCH_CONCURRENCY", "8")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "http://metrics.local/v1", cfg.Sources.MetricsBaseURL)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 0.5, cfg.HTTP.RatePerSec)
	assert.Equal(t, 8, cfg.Watch.Concurrency)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"no metrics source", map[string]string{}},
		{"invalid env", map[string]string{"METRICS_DIR": "x", "ENV": "invalid"}},
		{"zero rate", map[string]string{"METRICS_DIR": "x", "FETCH_RATE_PER_SEC": "0"}},
		{"zero concurrency", map[string]string{"METRICS_DIR": "x", "WATCH_CONCURRENCY": "0"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("METRICS_DIR", "")
			t.Setenv("METRICS_BASE_URL", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("TEST_DURATION", "2h")
	t.Setenv("TEST_INT", "100")
	t.Setenv("TEST_FLOAT", "1.25")
	t.Setenv("TEST_BAD", "abc")

	assert.Equal(t, 2*time.Hour, getEnvAsDuration("TEST_DURATION", "1h"))
	assert.Equal(t, time.Hour, getEnvAsDuration("TEST_BAD", "1h"))
	assert.Equal(t, 100, getEnvAsInt("TEST_INT", 50))
	assert.Equal(t, 50, getEnvAsInt("TEST_BAD", 50))
	assert.Equal(t, 1.25, getEnvAsFloat("TEST_FLOAT", 2))
	assert.Equal(t, 2.0, getEnvAsFloat("TEST_MISSING", 2))
}

func TestAnalysisConfigPath(t *testing.T) {
	t.Setenv("ANALYSIS_CONFIG", "")
	assert.Equal(t, "configs/analysis.yaml", AnalysisConfigPath())

	t.Setenv("ANALYSIS_CONFIG", "/etc/stockscore/analysis.yaml")
	assert.Equal(t, "/etc/stockscore/analysis.yaml", AnalysisConfigPath())
}
