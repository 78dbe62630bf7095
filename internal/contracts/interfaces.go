package contracts

import "context"

// MetricsProvider produces a FinancialMetrics record for a symbol
// ⭐ SSOT: 펀더멘털 데이터 수집 인터페이스
type MetricsProvider interface {
	Name() string
	Fetch(ctx context.Context, symbol string) (*FinancialMetrics, error)
}

// QuoteProvider supplies point-in-time market data
// ⭐ SSOT: 현재가/PER/배당수익률 인터페이스
type QuoteProvider interface {
	Quote(ctx context.Context, symbol string) (*Quote, error)
}

// BenchmarkProvider supplies the market dividend-yield proxy
type BenchmarkProvider interface {
	BenchmarkYield(ctx context.Context) (float64, error)
}

// Quote holds market overrides; every field may be absent
type Quote struct {
	Symbol        string   `json:"symbol"`
	Price         *float64 `json:"price,omitempty"`
	TrailingPE    *float64 `json:"trailing_pe,omitempty"`
	DividendYield *float64 `json:"dividend_yield,omitempty"`
	Beta          *float64 `json:"beta,omitempty"`
}
