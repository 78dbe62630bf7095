package config_test

import (
	"fmt"

	"github.com/wonny/stockscore/backend/pkg/config"
)

// Example shows which collaborators the CLI will wire from the environment
func Example() {
	cfg, err := config.Load()
	if err != nil {
		// METRICS_DIR / METRICS_BASE_URL 중 하나는 필수
		fmt.Printf("Failed to load config: %v\n", err)
		return
	}

	switch {
	case cfg.Sources.MetricsDir != "" && cfg.Sources.MetricsBaseURL != "":
		fmt.Println("Metrics: file + http (merged)")
	case cfg.Sources.MetricsDir != "":
		fmt.Printf("Metrics: %s/<SYMBOL>.json\n", cfg.Sources.MetricsDir)
	default:
		fmt.Printf("Metrics: %s/<SYMBOL>\n", cfg.Sources.MetricsBaseURL)
	}

	fmt.Printf("Analysis params: %s\n", cfg.AnalysisConfigPath)
	fmt.Printf("Watch: %q x%d\n", cfg.Watch.Schedule, cfg.Watch.Concurrency)
	fmt.Printf("Fetch: %.1f req/s (burst %d)\n", cfg.HTTP.RatePerSec, cfg.HTTP.Burst)
}
