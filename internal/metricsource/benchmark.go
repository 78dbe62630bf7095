package metricsource

import (
	"context"
	"fmt"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/pkg/httputil"
)

// maxBenchmarkYield rejects documents that report percent instead of decimal
const maxBenchmarkYield = 0.20

// StaticBenchmark is a fixed benchmark yield
type StaticBenchmark float64

// BenchmarkYield implements contracts.BenchmarkProvider
func (b StaticBenchmark) BenchmarkYield(context.Context) (float64, error) {
	return float64(b), nil
}

// HTTPBenchmark reads {"yield": 0.013} from a URL
type HTTPBenchmark struct {
	url    string
	client *httputil.Client
}

// NewHTTPBenchmark creates a benchmark reader for url
func NewHTTPBenchmark(url string, client *httputil.Client) *HTTPBenchmark {
	return &HTTPBenchmark{url: url, client: client}
}

// BenchmarkYield implements contracts.BenchmarkProvider
func (b *HTTPBenchmark) BenchmarkYield(ctx context.Context) (float64, error) {
	var doc struct {
		Yield *float64 `json:"yield"`
	}
	if err := b.client.GetJSON(ctx, b.url, &doc); err != nil {
		return 0, fmt.Errorf("benchmark yield: %w", err)
	}

	if doc.Yield == nil {
		return 0, fmt.Errorf("benchmark yield: missing \"yield\" in %s", b.url)
	}
	y := *doc.Yield
	if !isFinite(y) || y <= 0 || y > maxBenchmarkYield {
		return 0, fmt.Errorf("benchmark yield: %v out of range (0, %v]", y, maxBenchmarkYield)
	}
	return y, nil
}

var (
	_ contracts.BenchmarkProvider = StaticBenchmark(0)
	_ contracts.BenchmarkProvider = (*HTTPBenchmark)(nil)
	_ contracts.QuoteProvider     = (*StaticQuotes)(nil)
	_ contracts.MetricsProvider   = (*FileProvider)(nil)
	_ contracts.MetricsProvider   = (*HTTPProvider)(nil)
	_ contracts.MetricsProvider   = (*MultiProvider)(nil)
)
