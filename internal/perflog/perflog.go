// Package perflog persists one performance snapshot per calendar day to an
// append-only store. The live ledger itself is never persisted; these daily
// aggregates are the only state that survives a restart.
package perflog

import (
	"context"
	"fmt"
	"sync"

	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/valuation"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// DailySnapshot is one summary row: account state at first valuation of the day.
type DailySnapshot struct {
	Date       string
	Time       string
	Cash       decimal.Decimal
	TotalAsset decimal.Decimal
	PnL        decimal.Decimal
}

// HoldingSnapshot is one detail row for a position held on that day.
type HoldingSnapshot struct {
	Date   string
	Symbol string
	Shares int64
	Price  float64
	Value  decimal.Decimal
}

// Store is an append-only snapshot sink. Implementations must tolerate being
// handed the same date twice across process restarts.
type Store interface {
	AppendSummary(ctx context.Context, snap DailySnapshot) error
	AppendHoldings(ctx context.Context, snaps []HoldingSnapshot) error
}

// Logger writes at most one snapshot row set per calendar date.
type Logger struct {
	mu       sync.Mutex
	store    Store
	lastDate string
	logger   *zap.Logger
}

func New(store Store, logger *zap.Logger) *Logger {
	return &Logger{store: store, logger: logger}
}

// Record logs the valuation if its calendar date has not been logged yet in
// this process; later valuations on the same date are no-ops. The date
// marker only advances after the summary row lands, so a transient write
// failure is retried on the next cycle.
func (p *Logger) Record(ctx context.Context, res valuation.Result) error {
	date := res.Time.Format(dateLayout)

	p.mu.Lock()
	defer p.mu.Unlock()

	if date == p.lastDate {
		return nil
	}

	summary := DailySnapshot{
		Date:       date,
		Time:       res.Time.Format(timeLayout),
		Cash:       res.Cash,
		TotalAsset: res.TotalAsset,
		PnL:        res.PnL,
	}
	if err := p.store.AppendSummary(ctx, summary); err != nil {
		return fmt.Errorf("perflog: summary append: %w", err)
	}
	p.lastDate = date

	holdings := make([]HoldingSnapshot, 0, len(res.Holdings))
	for _, h := range res.Holdings {
		holdings = append(holdings, HoldingSnapshot{
			Date:   date,
			Symbol: h.Symbol,
			Shares: h.Shares,
			Price:  h.Price,
			Value:  h.Value,
		})
	}
	if err := p.store.AppendHoldings(ctx, holdings); err != nil {
		return fmt.Errorf("perflog: holdings append: %w", err)
	}

	p.logger.Info("daily snapshot recorded",
		zap.String("date", date),
		zap.String("total_asset", res.TotalAsset.String()),
		zap.Int("holdings", len(holdings)))
	return nil
}
