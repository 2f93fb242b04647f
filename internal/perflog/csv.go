package perflog

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

const (
	summaryFile  = "performance.csv"
	holdingsFile = "holdings.csv"
)

var (
	summaryHeader  = []string{"date", "time", "cash", "total_asset", "pnl"}
	holdingsHeader = []string{"date", "stock_code", "shares", "price", "value"}
)

// CSVStore appends snapshot rows to two flat files under dir. The header row
// is written exactly once, when a file is first created.
type CSVStore struct {
	dir string
}

func NewCSVStore(dir string) (*CSVStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating snapshot dir: %w", err)
	}
	return &CSVStore{dir: dir}, nil
}

func (s *CSVStore) AppendSummary(_ context.Context, snap DailySnapshot) error {
	row := []string{
		snap.Date,
		snap.Time,
		snap.Cash.String(),
		snap.TotalAsset.String(),
		snap.PnL.String(),
	}
	return s.appendRows(summaryFile, summaryHeader, [][]string{row})
}

func (s *CSVStore) AppendHoldings(_ context.Context, snaps []HoldingSnapshot) error {
	rows := make([][]string, 0, len(snaps))
	for _, h := range snaps {
		rows = append(rows, []string{
			h.Date,
			h.Symbol,
			strconv.FormatInt(h.Shares, 10),
			strconv.FormatFloat(h.Price, 'f', -1, 64),
			h.Value.String(),
		})
	}
	return s.appendRows(holdingsFile, holdingsHeader, rows)
}

func (s *CSVStore) appendRows(name string, header []string, rows [][]string) error {
	path := filepath.Join(s.dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("writing header to %s: %w", name, err)
		}
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing row to %s: %w", name, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", name, err)
	}
	return nil
}
