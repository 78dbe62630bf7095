package metricsource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wonny/stockscore/backend/internal/contracts"
	"github.com/wonny/stockscore/backend/pkg/logger"
)

// FileProvider reads <dir>/<SYMBOL>.json records written by an upstream fetch step
type FileProvider struct {
	dir    string
	logger *logger.Logger
}

// NewFileProvider creates a provider rooted at dir
func NewFileProvider(dir string, log *logger.Logger) *FileProvider {
	return &FileProvider{
		dir:    dir,
		logger: log.WithComponent("metricsource").WithField("provider", "file"),
	}
}

// Name implements contracts.MetricsProvider
func (p *FileProvider) Name() string {
	return "file"
}

// Fetch loads and normalizes one record
func (p *FileProvider) Fetch(ctx context.Context, symbol string) (*contracts.FinancialMetrics, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sym, err := CleanSymbol(symbol)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(p.dir, sym+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", sym, contracts.ErrNotFound)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m contracts.FinancialMetrics
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if m.Symbol == "" {
		m.Symbol = sym
	}
	if m.Source == "" {
		m.Source = p.Name()
	}
	if m.FetchedAt.IsZero() {
		if info, err := os.Stat(path); err == nil {
			m.FetchedAt = info.ModTime().UTC()
		}
	}

	p.logger.WithFields(map[string]interface{}{
		"symbol": sym,
		"source": m.Source,
		"path":   path,
	}).Debug("Loaded metrics file")

	return Normalize(&m), nil
}
