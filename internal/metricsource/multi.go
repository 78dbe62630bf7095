package metricsource

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// MultiProvider fetches from every source concurrently and merges the
// successes in priority order (first provider is the primary).
type MultiProvider struct {
	providers []contracts.MetricsProvider
	logger    *logger.Logger
}

// NewMultiProvider creates a merging provider over providers
func NewMultiProvider(log *logger.Logger, providers ...contracts.MetricsProvider) *MultiProvider {
	return &MultiProvider{
		providers: providers,
		logger:    log.WithComponent("metricsource").WithField("provider", "multi"),
	}
}

// Name implements contracts.MetricsProvider
func (p *MultiProvider) Name() string {
	return "multi"
}

// Fetch tolerates individual failures and errors only when every source
// failed. The per-source errors stay matchable with errors.Is.
func (p *MultiProvider) Fetch(ctx context.Context, symbol string) (*contracts.FinancialMetrics, error) {
	if len(p.providers) == 0 {
		return nil, fmt.Errorf("%s: %w", symbol, contracts.ErrNoSources)
	}

	results := make([]*contracts.FinancialMetrics, len(p.providers))
	errs := make([]error, len(p.providers))

	var g errgroup.Group
	for i, provider := range p.providers {
		i, provider := i, provider
		g.Go(func() error {
			m, err := provider.Fetch(ctx, symbol)
			results[i], errs[i] = m, err
			return nil
		})
	}
	_ = g.Wait()

	var merged *contracts.FinancialMetrics
	var failures []error
	for i, m := range results {
		if errs[i] != nil {
			p.logger.WithError(errs[i]).WithFields(map[string]interface{}{
				"symbol": symbol,
				"source": p.providers[i].Name(),
			}).Warn("Metrics source failed")
			failures = append(failures, errs[i])
			continue
		}
		merged = Merge(merged, m)
	}

	if merged == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w: %w", symbol, contracts.ErrNoSources, errors.Join(failures...))
	}

	return merged, nil
}
