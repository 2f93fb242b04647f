// Package market resolves symbols to quotes and display names through an
// ordered chain of external providers. Individual provider failures are
// absorbed here; callers only ever see ErrQuoteUnavailable once a full chain
// is exhausted.
package market

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/pkg/twse"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/pkg/yahoo"

	"go.uber.org/zap"
)

// ErrQuoteUnavailable is returned when every provider in the applicable
// chain has failed for a symbol.
var ErrQuoteUnavailable = errors.New("market: quote unavailable")

// Quote is a provider-independent realtime quote.
type Quote struct {
	Symbol        string    `json:"symbol"`
	Price         float64   `json:"price"`
	Open          float64   `json:"open"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Volume        int64     `json:"volume"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
	AsOf          time.Time `json:"as_of"`
}

// IsDomestic reports whether a symbol is routed through the TW chain.
// Classification is purely syntactic: all-digit tickers are domestic.
func IsDomestic(symbol string) bool {
	if symbol == "" {
		return false
	}
	for _, r := range symbol {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Resolver routes quote and name lookups to the provider chain for the
// symbol's market: TWSE end-of-day then MIS intraday for domestic symbols,
// Yahoo Finance for everything else.
type Resolver struct {
	exchange *twse.Client
	mis      *twse.MISClient
	yahoo    *yahoo.Client
	logger   *zap.Logger
	now      func() time.Time
}

func NewResolver(exchange *twse.Client, mis *twse.MISClient, yq *yahoo.Client, logger *zap.Logger) *Resolver {
	return &Resolver{
		exchange: exchange,
		mis:      mis,
		yahoo:    yq,
		logger:   logger,
		now:      time.Now,
	}
}

// RealtimePrice resolves a symbol to a quote. Provider errors are logged at
// Warn and converted into a fallback attempt; only chain exhaustion surfaces,
// as ErrQuoteUnavailable.
func (r *Resolver) RealtimePrice(ctx context.Context, symbol string) (Quote, error) {
	if IsDomestic(symbol) {
		return r.domesticPrice(ctx, symbol)
	}
	return r.foreignPrice(ctx, symbol)
}

func (r *Resolver) domesticPrice(ctx context.Context, symbol string) (Quote, error) {
	daily, err := r.exchange.DailyQuote(ctx, symbol, r.now())
	if err == nil {
		// End-of-day aggregate: the stated baseline is the session open.
		change, pct := derive(daily.Close, daily.Open)
		return Quote{
			Symbol:        symbol,
			Price:         daily.Close,
			Open:          daily.Open,
			High:          daily.High,
			Low:           daily.Low,
			Volume:        daily.Volume,
			Change:        change,
			ChangePercent: pct,
			AsOf:          r.now(),
		}, nil
	}
	r.logger.Warn("twse daily quote failed, falling back to mis",
		zap.String("symbol", symbol), zap.Error(err))

	snap, err := r.mis.Snapshot(ctx, symbol)
	if err != nil {
		r.logger.Warn("mis snapshot failed, chain exhausted",
			zap.String("symbol", symbol), zap.Error(err))
		return Quote{}, ErrQuoteUnavailable
	}

	// Intraday tick: the stated baseline is the previous close.
	change, pct := derive(snap.Price, snap.PrevClose)
	return Quote{
		Symbol:        symbol,
		Price:         snap.Price,
		Open:          snap.Open,
		High:          snap.High,
		Low:           snap.Low,
		Volume:        snap.Volume,
		Change:        change,
		ChangePercent: pct,
		AsOf:          r.now(),
	}, nil
}

func (r *Resolver) foreignPrice(ctx context.Context, symbol string) (Quote, error) {
	q, err := r.yahoo.Quote(ctx, symbol)
	if err != nil {
		r.logger.Warn("yahoo quote failed",
			zap.String("symbol", symbol), zap.Error(err))
		return Quote{}, ErrQuoteUnavailable
	}

	change, pct := derive(q.Price, q.PrevClose)
	return Quote{
		Symbol:        symbol,
		Price:         q.Price,
		Open:          q.Open,
		High:          q.High,
		Low:           q.Low,
		Volume:        q.Volume,
		Change:        change,
		ChangePercent: pct,
		AsOf:          r.now(),
	}, nil
}

// StockName resolves a display name: curated table first, then the market's
// provider, finally the symbol itself. This lookup never fails.
func (r *Resolver) StockName(ctx context.Context, symbol string) string {
	if IsDomestic(symbol) {
		if name, ok := stockNamesTW[symbol]; ok {
			return name
		}
		name, err := r.mis.StockName(ctx, symbol)
		if err != nil {
			r.logger.Warn("mis name lookup failed",
				zap.String("symbol", symbol), zap.Error(err))
			return symbol
		}
		return name
	}

	if name, ok := stockNamesUS[strings.ToUpper(symbol)]; ok {
		return name
	}
	name, err := r.yahoo.StockName(ctx, symbol)
	if err != nil {
		r.logger.Warn("yahoo name lookup failed",
			zap.String("symbol", symbol), zap.Error(err))
		return symbol
	}
	return name
}

// derive computes the change fields against whatever baseline the active
// provider states. A non-positive baseline yields zero percent, never a
// division by zero.
func derive(price, reference float64) (change, changePercent float64) {
	change = price - reference
	if reference > 0 {
		changePercent = change / reference * 100
	}
	return change, changePercent
}
