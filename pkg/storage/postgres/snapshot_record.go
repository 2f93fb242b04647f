package postgres

import "time"

// PerformanceRecord is one daily account summary row. The unique index on
// date makes re-inserts after a restart no-ops.
type PerformanceRecord struct {
	ID uint `gorm:"primaryKey"`

	Date string `gorm:"type:varchar(10);not null;uniqueIndex:idx_performance_date"`
	Time string `gorm:"type:varchar(8);not null"`

	Cash       float64 `gorm:"type:numeric;not null"`
	TotalAsset float64 `gorm:"type:numeric;not null"`
	PnL        float64 `gorm:"type:numeric;not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (PerformanceRecord) TableName() string {
	return "performance_record"
}

// HoldingRecord is one daily per-position detail row, unique per date and
// stock code.
type HoldingRecord struct {
	ID uint `gorm:"primaryKey"`

	Date      string `gorm:"type:varchar(10);not null;uniqueIndex:idx_holding_date_code"`
	StockCode string `gorm:"type:text;not null;uniqueIndex:idx_holding_date_code"`

	Shares int64   `gorm:"not null"`
	Price  float64 `gorm:"type:numeric;not null"`
	Value  float64 `gorm:"type:numeric;not null"`

	RecordedAt time.Time `gorm:"autoCreateTime"`
}

// TableName overrides the default table name for GORM.
func (HoldingRecord) TableName() string {
	return "holding_record"
}
