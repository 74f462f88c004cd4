package collector

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"foreknown/internal/calculator"
	"foreknown/internal/model"
	"foreknown/internal/predict"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price  float64
	Closes []float64
	Err    error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchCloses(_ context.Context, _ string, count int) ([]float64, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Closes != nil {
		return trimTail(m.Closes, count), nil
	}
	return generateMockCloses(m.Price, count), nil
}

func generateMockCloses(basePrice float64, count int) []float64 {
	closes := make([]float64, count)
	for i := 0; i < count; i++ {
		closes[i] = basePrice * (1 + float64(i-count/2)*0.001)
	}
	return closes
}

// Collector fetches a symbol's history and validates it for prediction.
type Collector struct {
	Fetcher  Fetcher
	Symbol   string
	Lookback int
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, symbol string, lookback int) *Collector {
	return &Collector{Fetcher: fetcher, Symbol: symbol, Lookback: lookback}
}

// Collect fetches the configured symbol.
func (c *Collector) Collect(ctx context.Context) (*model.Series, error) {
	return c.CollectSymbol(ctx, c.Symbol)
}

// CollectSymbol fetches history for symbol, rejects invalid observations and
// computes the series summary.
func (c *Collector) CollectSymbol(ctx context.Context, symbol string) (*model.Series, error) {
	closes, err := c.Fetcher.FetchCloses(ctx, symbol, c.Lookback)
	if err != nil {
		return nil, fmt.Errorf("fetch closes: %w", err)
	}
	if err := predict.ValidateObservations(closes); err != nil {
		return nil, fmt.Errorf("validate %s history: %w", symbol, err)
	}

	series := &model.Series{
		Symbol:       symbol,
		Source:       c.Fetcher.Name(),
		Observations: closes,
		FetchedAt:    time.Now(),
	}
	if sum, err := calculator.Summarize(closes); err != nil {
		log.Warnf("summary for %s failed: %v", symbol, err)
	} else {
		series.Summary = sum
	}

	log.WithFields(log.Fields{
		"symbol": symbol,
		"source": series.Source,
		"count":  len(closes),
		"last":   series.Last(),
	}).Info("history collected")
	return series, nil
}
