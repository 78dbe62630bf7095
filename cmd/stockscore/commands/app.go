package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/stockscore/backend/internal/analysisconfig"
	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/internal/metricsource"
	"github.com/wonny/stockscore/backend/internal/valuation"
	"github.com/wonny/stockscore/backend/pkg/config"
	"github.com/wonny/stockscore/backend/pkg/httputil"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// app holds the wired dependencies shared by commands
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	analysis  *analysisconfig.Config
	engine    *valuation.Engine
	metrics   contracts.MetricsProvider
	quotes    contracts.QuoteProvider
	benchmark contracts.BenchmarkProvider
}

// newApp loads env config and the analysis YAML, then wires providers
// ⭐ SSOT: CLI 의존성 조립은 여기서만
func newApp(opts *rootOptions) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.verbose {
		cfg.LogLevel = "debug"
	}
	log := logger.New(cfg)

	path := cfg.AnalysisConfigPath
	if opts.analysisConfig != "" {
		path = opts.analysisConfig
	}
	analysis, _, err := analysisconfig.Load(path)
	if err != nil {
		return nil, err
	}
	params, err := analysis.EngineParams()
	if err != nil {
		return nil, fmt.Errorf("engine params: %w", err)
	}

	client := httputil.New(cfg, log)

	var providers []contracts.MetricsProvider
	if cfg.Sources.MetricsDir != "" {
		providers = append(providers, metricsource.NewFileProvider(cfg.Sources.MetricsDir, log))
	}
	if cfg.Sources.MetricsBaseURL != "" {
		providers = append(providers, metricsource.NewHTTPProvider("http", cfg.Sources.MetricsBaseURL, client, log))
	}

	var metrics contracts.MetricsProvider
	if len(providers) == 1 {
		metrics = providers[0]
	} else {
		metrics = metricsource.NewMultiProvider(log, providers...)
	}

	quotes, err := metricsource.LoadStaticQuotes(cfg.Sources.QuotesFile)
	if err != nil {
		return nil, err
	}

	var benchmark contracts.BenchmarkProvider
	if cfg.Sources.BenchmarkURL != "" {
		benchmark = metricsource.NewHTTPBenchmark(cfg.Sources.BenchmarkURL, client)
	}

	log.WithFields(map[string]interface{}{
		"profile": analysis.Meta.ProfileID,
		"params":  params.Hash,
		"sources": len(providers),
	}).Debug("CLI wired")

	return &app{
		cfg:       cfg,
		log:       log,
		analysis:  analysis,
		engine:    valuation.NewEngine(log, params),
		metrics:   metrics,
		quotes:    quotes,
		benchmark: benchmark,
	}, nil
}

// marketOverrides are per-call flags that beat the quote table
type marketOverrides struct {
	price, pe, yield *float64
}

// inputs assembles engine inputs for symbol from quotes, benchmark and overrides
func (a *app) inputs(ctx context.Context, symbol string, model contracts.ValuationModel, o marketOverrides) (valuation.Inputs, error) {
	in := valuation.Inputs{
		Model:  model,
		Manual: a.analysis.Manual(symbol),
	}

	q, err := a.quotes.Quote(ctx, symbol)
	switch {
	case err == nil:
		in.CurrentPrice = q.Price
		in.TrailingPE = q.TrailingPE
		in.DividendYield = q.DividendYield
		in.Beta = q.Beta
	case errors.Is(err, contracts.ErrNotFound):
		// 시세 없음: 가격 없이 분석
	default:
		return in, err
	}

	if o.price != nil {
		in.CurrentPrice = o.price
	}
	if o.pe != nil {
		in.TrailingPE = o.pe
	}
	if o.yield != nil {
		in.DividendYield = o.yield
	}

	if a.benchmark != nil {
		y, err := a.benchmark.BenchmarkYield(ctx)
		if err != nil {
			a.log.WithError(err).Warn("Benchmark yield unavailable, using configured default")
		} else {
			in.BenchmarkYield = &y
		}
	}
	return in, nil
}
