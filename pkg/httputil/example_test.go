package httputil_test

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stockscore/backend/pkg/config"
	"github.com/wonny/stockscore/backend/pkg/httputil"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// Example_getJSON fetches a benchmark yield document
func Example_getJSON() {
	cfg := &config.Config{
		Env: "development",
		HTTP: config.HTTPConfig{
			Timeout:    5 * time.Second,
			MaxRetries: 2,
			RatePerSec: 2,
			Burst:      1,
		},
	}
	client := httputil.New(cfg, logger.NewNop())

	var doc struct {
		Yield float64 `json:"yield"`
	}
	if err := client.GetJSON(context.Background(), "https://example.com/benchmark.json", &doc); err != nil {
		if httputil.IsNotFound(err) {
			fmt.Println("benchmark not published")
			return
		}
		fmt.Printf("fetch failed: %v\n", err)
		return
	}

	fmt.Printf("benchmark yield: %.2f%%\n", doc.Yield*100)
}
