package metricsource

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/pkg/httputil"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// HTTPProvider GETs <base>/<SYMBOL> and decodes a FinancialMetrics JSON body
type HTTPProvider struct {
	name    string
	baseURL string
	client  *httputil.Client
	logger  *logger.Logger
}

// NewHTTPProvider creates a JSON provider. name becomes the record source
// tag when the body does not carry one.
func NewHTTPProvider(name, baseURL string, client *httputil.Client, log *logger.Logger) *HTTPProvider {
	return &HTTPProvider{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  log.WithComponent("metricsource").WithField("provider", name),
	}
}

// Name implements contracts.MetricsProvider
func (p *HTTPProvider) Name() string {
	return p.name
}

// Fetch downloads and normalizes one record
func (p *HTTPProvider) Fetch(ctx context.Context, symbol string) (*contracts.FinancialMetrics, error) {
	sym, err := CleanSymbol(symbol)
	if err != nil {
		return nil, err
	}

	target := p.baseURL + "/" + url.PathEscape(sym)

	var m contracts.FinancialMetrics
	if err := p.client.GetJSON(ctx, target, &m); err != nil {
		if httputil.IsNotFound(err) {
			return nil, fmt.Errorf("%s from %s: %w", sym, p.name, contracts.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch %s from %s: %w", sym, p.name, err)
	}

	if m.Symbol == "" {
		m.Symbol = sym
	}
	if m.Source == "" {
		m.Source = p.name
	}

	return Normalize(&m), nil
}
