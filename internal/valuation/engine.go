// Package valuation combines ledger state with resolved quotes into a
// per-cycle account picture: total asset, PnL and per-holding market values.
package valuation

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/ledger"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/market"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteSource is the slice of the resolver the engine needs.
type QuoteSource interface {
	RealtimePrice(ctx context.Context, symbol string) (market.Quote, error)
	StockName(ctx context.Context, symbol string) string
}

// Holding is one valued position.
type Holding struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Shares   int64           `json:"shares"`
	Price    float64         `json:"price"`
	Value    decimal.Decimal `json:"value"`
	Domestic bool            `json:"domestic"`
}

// Result is the outcome of one valuation cycle. WatchedQuote is nil when the
// watched symbol could not be resolved this cycle.
type Result struct {
	Time          time.Time       `json:"time"`
	Watched       string          `json:"watched"`
	WatchedQuote  *market.Quote   `json:"watched_quote,omitempty"`
	Cash          decimal.Decimal `json:"cash"`
	TotalAsset    decimal.Decimal `json:"total_asset"`
	PnL           decimal.Decimal `json:"pnl"`
	DomesticValue decimal.Decimal `json:"domestic_value"`
	Holdings      []Holding       `json:"holdings"`
}

// Engine values a ledger against quotes from a QuoteSource.
type Engine struct {
	source QuoteSource
	logger *zap.Logger

	maxConcurrent int
}

func NewEngine(source QuoteSource, logger *zap.Logger) *Engine {
	return &Engine{
		source:        source,
		logger:        logger,
		maxConcurrent: 5,
	}
}

// Valuate resolves at most one quote per distinct held symbol plus the
// watched symbol, fetching concurrently, and computes the cycle result from
// a single consistent ledger snapshot. A held symbol whose whole chain
// failed contributes zero to the total.
func (e *Engine) Valuate(ctx context.Context, book *ledger.Ledger, watched string) Result {
	cash, holdings := book.Snapshot()

	symbols := make([]string, 0, len(holdings)+1)
	for symbol := range holdings {
		symbols = append(symbols, symbol)
	}
	if watched != "" {
		if _, held := holdings[watched]; !held {
			symbols = append(symbols, watched)
		}
	}

	quotes := e.fetchQuotes(ctx, symbols)

	res := Result{
		Time:          time.Now(),
		Watched:       watched,
		Cash:          cash,
		TotalAsset:    cash,
		DomesticValue: decimal.Zero,
	}

	if q, ok := quotes[watched]; ok {
		res.WatchedQuote = &q
	}

	for symbol, shares := range holdings {
		h := Holding{
			Symbol:   symbol,
			Name:     e.source.StockName(ctx, symbol),
			Shares:   shares,
			Domestic: market.IsDomestic(symbol),
			Value:    decimal.Zero,
		}
		if q, ok := quotes[symbol]; ok {
			h.Price = q.Price
			h.Value = decimal.NewFromFloat(q.Price).Mul(decimal.NewFromInt(shares))
		}
		res.TotalAsset = res.TotalAsset.Add(h.Value)
		if h.Domestic {
			res.DomesticValue = res.DomesticValue.Add(h.Value)
		}
		res.Holdings = append(res.Holdings, h)
	}
	sort.Slice(res.Holdings, func(i, j int) bool {
		return res.Holdings[i].Symbol < res.Holdings[j].Symbol
	})

	res.PnL = res.TotalAsset.Sub(book.InitialCash())
	return res
}

// fetchQuotes resolves the given symbols concurrently under a small
// semaphore. Quote fetches share no state, so this is safe; failures simply
// leave the symbol out of the map.
func (e *Engine) fetchQuotes(ctx context.Context, symbols []string) map[string]market.Quote {
	quotes := make(map[string]market.Quote, len(symbols))

	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, e.maxConcurrent)

	for _, symbol := range symbols {
		wg.Add(1)
		sem <- struct{}{}

		go func(symbol string) {
			defer wg.Done()
			defer func() { <-sem }()

			q, err := e.source.RealtimePrice(ctx, symbol)
			if err != nil {
				e.logger.Warn("quote unavailable this cycle", zap.String("symbol", symbol))
				return
			}
			mu.Lock()
			quotes[symbol] = q
			mu.Unlock()
		}(symbol)
	}
	wg.Wait()

	return quotes
}
