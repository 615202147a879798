package services

import (
	"context"
	"log"
	"sync"
)

// PriceProvider is the minimal market-data contract the cache fetches from
type PriceProvider interface {
	GetPrice(ctx context.Context, symbol string) (float64, error)
}

// DefaultQuoteWorkers bounds concurrent provider calls per batch
const DefaultQuoteWorkers = 4

// QuoteCache fetches current prices for a set of symbols, calling the
// provider at most once per symbol per batch. It holds no state between
// batches; every call re-fetches fresh prices.
type QuoteCache struct {
	provider PriceProvider
	workers  int
}

// NewQuoteCache creates a quote cache with a bounded worker pool
func NewQuoteCache(provider PriceProvider, workers int) *QuoteCache {
	if workers <= 0 {
		workers = DefaultQuoteWorkers
	}
	return &QuoteCache{provider: provider, workers: workers}
}

// FetchAll fetches a price for each distinct symbol concurrently and
// returns symbol -> price. Symbols whose fetch failed are absent from
// the result; a partial batch is never an error.
func (qc *QuoteCache) FetchAll(ctx context.Context, symbols []string) map[string]float64 {
	prices := make(map[string]float64, len(symbols))
	if len(symbols) == 0 {
		return prices
	}

	// De-duplicate defensively; callers normally pass distinct symbols.
	seen := make(map[string]bool, len(symbols))
	unique := make([]string, 0, len(symbols))
	for _, symbol := range symbols {
		if symbol == "" || seen[symbol] {
			continue
		}
		seen[symbol] = true
		unique = append(unique, symbol)
	}

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = make(chan struct{}, qc.workers)
	)

	for _, symbol := range unique {
		wg.Add(1)
		go func(symbol string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				return
			}

			price, err := qc.provider.GetPrice(ctx, symbol)
			if err != nil {
				log.Printf("Error fetching quote for %s: %v", symbol, err)
				return
			}

			mu.Lock()
			prices[symbol] = price
			mu.Unlock()
		}(symbol)
	}

	wg.Wait()
	return prices
}
