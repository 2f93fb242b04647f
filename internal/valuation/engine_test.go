package valuation

import (
	"context"
	"testing"

	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/ledger"
	"github.com/ChangShuKai/Taiwan-Stock-Instant-Trading-System/internal/market"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// stubSource serves quotes from a fixed map; symbols not present are
// unavailable.
type stubSource struct {
	prices map[string]float64
	names  map[string]string
}

func (s *stubSource) RealtimePrice(_ context.Context, symbol string) (market.Quote, error) {
	price, ok := s.prices[symbol]
	if !ok {
		return market.Quote{}, market.ErrQuoteUnavailable
	}
	return market.Quote{Symbol: symbol, Price: price}, nil
}

func (s *stubSource) StockName(_ context.Context, symbol string) string {
	if name, ok := s.names[symbol]; ok {
		return name
	}
	return symbol
}

// go test -v --run TestValuate
func TestValuate(t *testing.T) {
	book := ledger.New(1_000_000)
	if _, err := book.Buy("2330", 500, 1000); err != nil {
		t.Fatalf("setup buy failed: %v", err)
	}
	if _, err := book.Buy("AAPL", 200, 50); err != nil {
		t.Fatalf("setup buy failed: %v", err)
	}

	source := &stubSource{
		prices: map[string]float64{"2330": 510, "AAPL": 210, "0050": 140},
		names:  map[string]string{"2330": "台積電"},
	}
	engine := NewEngine(source, zap.NewNop())

	res := engine.Valuate(context.Background(), book, "0050")

	wantTotal := book.Cash().
		Add(decimal.NewFromInt(510 * 1000)).
		Add(decimal.NewFromInt(210 * 50))
	if !res.TotalAsset.Equal(wantTotal) {
		t.Errorf("TotalAsset = %s, want %s", res.TotalAsset, wantTotal)
	}
	if !res.PnL.Equal(wantTotal.Sub(decimal.NewFromInt(1_000_000))) {
		t.Errorf("PnL = %s", res.PnL)
	}

	// domestic subtotal covers only the TW position
	if !res.DomesticValue.Equal(decimal.NewFromInt(510 * 1000)) {
		t.Errorf("DomesticValue = %s, want 510000", res.DomesticValue)
	}

	if len(res.Holdings) != 2 {
		t.Fatalf("holdings rows = %d, want 2", len(res.Holdings))
	}
	// rows sorted by symbol: "2330" < "AAPL"
	if res.Holdings[0].Symbol != "2330" || res.Holdings[1].Symbol != "AAPL" {
		t.Errorf("row order wrong: %+v", res.Holdings)
	}
	if res.Holdings[0].Name != "台積電" {
		t.Errorf("Name = %q", res.Holdings[0].Name)
	}
	if !res.Holdings[0].Domestic || res.Holdings[1].Domestic {
		t.Errorf("market partition wrong: %+v", res.Holdings)
	}

	if res.WatchedQuote == nil || res.WatchedQuote.Price != 140 {
		t.Errorf("WatchedQuote = %+v, want the 0050 quote", res.WatchedQuote)
	}
}

// go test -v --run TestValuateMissingQuote
func TestValuateMissingQuote(t *testing.T) {
	book := ledger.New(1_000_000)
	if _, err := book.Buy("2330", 500, 1000); err != nil {
		t.Fatalf("setup buy failed: %v", err)
	}
	if _, err := book.Buy("2317", 100, 2000); err != nil {
		t.Fatalf("setup buy failed: %v", err)
	}

	// 2317's whole chain is down this cycle
	source := &stubSource{prices: map[string]float64{"2330": 510}}
	engine := NewEngine(source, zap.NewNop())

	res := engine.Valuate(context.Background(), book, "")

	wantTotal := book.Cash().Add(decimal.NewFromInt(510 * 1000))
	if !res.TotalAsset.Equal(wantTotal) {
		t.Errorf("TotalAsset = %s, want %s (missing quote contributes zero)", res.TotalAsset, wantTotal)
	}

	var row *Holding
	for i := range res.Holdings {
		if res.Holdings[i].Symbol == "2317" {
			row = &res.Holdings[i]
		}
	}
	if row == nil {
		t.Fatal("2317 row missing; unquoted positions still appear")
	}
	if row.Price != 0 || !row.Value.Equal(decimal.Zero) {
		t.Errorf("unquoted row = %+v, want zero price and value", row)
	}
}

// go test -v --run TestValuateWatchedUnavailable
func TestValuateWatchedUnavailable(t *testing.T) {
	book := ledger.New(1_000_000)
	engine := NewEngine(&stubSource{}, zap.NewNop())

	res := engine.Valuate(context.Background(), book, "2330")
	if res.WatchedQuote != nil {
		t.Errorf("WatchedQuote = %+v, want nil", res.WatchedQuote)
	}
	if !res.TotalAsset.Equal(decimal.NewFromInt(1_000_000)) {
		t.Errorf("TotalAsset = %s, want bare cash", res.TotalAsset)
	}
	if !res.PnL.Equal(decimal.Zero) {
		t.Errorf("PnL = %s, want 0", res.PnL)
	}
}
