package metricsource

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/wonny/stockscore/backend/internal/contracts"
)

// StaticQuotes serves quotes from an in-memory table, typically loaded from
// a JSON file of {"KO": {"price": 58.2, "trailing_pe": 24.1}}.
type StaticQuotes struct {
	mu     sync.RWMutex
	quotes map[string]contracts.Quote
}

// NewStaticQuotes creates an empty table
func NewStaticQuotes() *StaticQuotes {
	return &StaticQuotes{quotes: make(map[string]contracts.Quote)}
}

// LoadStaticQuotes reads a quotes file. An empty path yields an empty table.
func LoadStaticQuotes(path string) (*StaticQuotes, error) {
	q := NewStaticQuotes()
	if path == "" {
		return q, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read quotes: %w", err)
	}

	var raw map[string]contracts.Quote
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode quotes %s: %w", path, err)
	}
	for sym, quote := range raw {
		if err := q.Set(sym, quote); err != nil {
			return nil, fmt.Errorf("quotes %s: %w", path, err)
		}
	}
	return q, nil
}

// Set stores or replaces the quote for symbol
func (q *StaticQuotes) Set(symbol string, quote contracts.Quote) error {
	sym, err := CleanSymbol(symbol)
	if err != nil {
		return err
	}
	quote.Symbol = sym

	q.mu.Lock()
	defer q.mu.Unlock()
	q.quotes[sym] = quote
	return nil
}

// Quote implements contracts.QuoteProvider
func (q *StaticQuotes) Quote(_ context.Context, symbol string) (*contracts.Quote, error) {
	sym, err := CleanSymbol(symbol)
	if err != nil {
		return nil, err
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	quote, ok := q.quotes[sym]
	if !ok {
		return nil, fmt.Errorf("quote %s: %w", sym, contracts.ErrNotFound)
	}
	return &quote, nil
}
