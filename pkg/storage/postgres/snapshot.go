package postgres

import (
	"context"

	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/perflog"

	"gorm.io/gorm/clause"
)

// AppendSummary inserts one daily summary row. A conflicting date is left
// untouched so a restarted process stays idempotent per calendar day.
func (p *PostgresClient) AppendSummary(ctx context.Context, snap perflog.DailySnapshot) error {
	record := &PerformanceRecord{
		Date:       snap.Date,
		Time:       snap.Time,
		Cash:       snap.Cash.InexactFloat64(),
		TotalAsset: snap.TotalAsset.InexactFloat64(),
		PnL:        snap.PnL.InexactFloat64(),
	}

	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}},
		DoNothing: true,
	}).Create(record)
	return tx.Error
}

// AppendHoldings inserts the per-position detail rows for one day.
func (p *PostgresClient) AppendHoldings(ctx context.Context, snaps []perflog.HoldingSnapshot) error {
	if len(snaps) == 0 {
		return nil
	}

	records := make([]HoldingRecord, 0, len(snaps))
	for _, h := range snaps {
		records = append(records, HoldingRecord{
			Date:      h.Date,
			StockCode: h.Symbol,
			Shares:    h.Shares,
			Price:     h.Price,
			Value:     h.Value.InexactFloat64(),
		})
	}

	tx := p.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "date"}, {Name: "stock_code"}},
		DoNothing: true,
	}).Create(&records)
	return tx.Error
}
