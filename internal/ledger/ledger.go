// Package ledger keeps the virtual trading account: cash, holdings and the
// trade history. It is pure bookkeeping with no I/O; quotes come in as plain
// prices and all money math runs on decimals so fee rounding is exact.
package ledger

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Fee table for the TW market. The fee applies to both sides of a trade,
// the transaction tax only to sells.
var (
	feeRate = decimal.RequireFromString("0.001425") // 0.1425%
	taxRate = decimal.RequireFromString("0.003")    // 0.3%, sell only

	buyCostFactor     = decimal.NewFromInt(1).Add(feeRate)              // 1.001425
	sellRevenueFactor = decimal.NewFromInt(1).Sub(feeRate).Sub(taxRate) // 0.995575
)

var (
	ErrInsufficientFunds  = errors.New("ledger: insufficient funds")
	ErrInsufficientShares = errors.New("ledger: insufficient shares")
	ErrUnknownPosition    = errors.New("ledger: position not held")
	ErrInvalidOrder       = errors.New("ledger: price and qty must be positive")
)

// Side marks the direction of a trade.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade is one executed order. Amount is the actual cash delta after fee and
// tax, not the raw notional.
type Trade struct {
	ID     string
	Time   time.Time
	Side   Side
	Symbol string
	Price  decimal.Decimal
	Qty    int64
	Amount decimal.Decimal
}

// Ledger is a single trading account. All methods are safe for concurrent
// use; mutations and valuation reads are serialized on one mutex so a refresh
// cycle never observes a half-applied trade.
type Ledger struct {
	mu          sync.Mutex
	initialCash decimal.Decimal
	cash        decimal.Decimal
	holdings    map[string]int64 // symbol -> shares, entries are always > 0
	trades      []Trade
}

// New creates a ledger with the given starting cash balance.
func New(initialCash float64) *Ledger {
	cash := decimal.NewFromFloat(initialCash)
	return &Ledger{
		initialCash: cash,
		cash:        cash,
		holdings:    make(map[string]int64),
	}
}

// Buy executes a purchase at the given price. The cash cost includes the
// buy-side fee. On ErrInsufficientFunds the account is left untouched.
func (l *Ledger) Buy(symbol string, price float64, qty int64) (Trade, error) {
	if price <= 0 || qty <= 0 {
		return Trade{}, ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	cost := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(qty)).
		Mul(buyCostFactor)
	if l.cash.LessThan(cost) {
		return Trade{}, ErrInsufficientFunds
	}

	l.cash = l.cash.Sub(cost)
	l.holdings[symbol] += qty

	t := Trade{
		ID:     uuid.NewString(),
		Time:   time.Now(),
		Side:   SideBuy,
		Symbol: symbol,
		Price:  decimal.NewFromFloat(price),
		Qty:    qty,
		Amount: cost,
	}
	l.trades = append(l.trades, t)
	return t, nil
}

// Sell executes a sale at the given price. Revenue is net of the sell-side
// fee and the transaction tax. A sale that empties a position removes the
// holdings entry entirely.
func (l *Ledger) Sell(symbol string, price float64, qty int64) (Trade, error) {
	if price <= 0 || qty <= 0 {
		return Trade{}, ErrInvalidOrder
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	held, ok := l.holdings[symbol]
	if !ok {
		return Trade{}, ErrUnknownPosition
	}
	if held < qty {
		return Trade{}, ErrInsufficientShares
	}

	revenue := decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(qty)).
		Mul(sellRevenueFactor)

	l.cash = l.cash.Add(revenue)
	if held == qty {
		delete(l.holdings, symbol)
	} else {
		l.holdings[symbol] = held - qty
	}

	t := Trade{
		ID:     uuid.NewString(),
		Time:   time.Now(),
		Side:   SideSell,
		Symbol: symbol,
		Price:  decimal.NewFromFloat(price),
		Qty:    qty,
		Amount: revenue,
	}
	l.trades = append(l.trades, t)
	return t, nil
}

// TotalAsset values the account against the given price map. A held symbol
// missing from the map contributes zero; its provider may be temporarily
// unavailable and that must not fail the valuation.
func (l *Ledger) TotalAsset(prices map[string]float64) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()

	total := l.cash
	for symbol, shares := range l.holdings {
		price, ok := prices[symbol]
		if !ok {
			continue
		}
		total = total.Add(decimal.NewFromFloat(price).Mul(decimal.NewFromInt(shares)))
	}
	return total
}

// Snapshot returns the cash balance and a copy of the holdings read under a
// single lock acquisition, so a valuation cycle never sees a half-applied
// trade.
func (l *Ledger) Snapshot() (decimal.Decimal, map[string]int64) {
	l.mu.Lock()
	defer l.mu.Unlock()

	holdings := make(map[string]int64, len(l.holdings))
	for symbol, shares := range l.holdings {
		holdings[symbol] = shares
	}
	return l.cash, holdings
}

// Cash returns the current cash balance.
func (l *Ledger) Cash() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cash
}

// InitialCash returns the starting balance the account was created with.
func (l *Ledger) InitialCash() decimal.Decimal {
	return l.initialCash
}

// Holdings returns a copy of the current positions.
func (l *Ledger) Holdings() map[string]int64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make(map[string]int64, len(l.holdings))
	for symbol, shares := range l.holdings {
		out[symbol] = shares
	}
	return out
}

// Shares returns the held share count for one symbol, zero if not held.
func (l *Ledger) Shares(symbol string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdings[symbol]
}

// Trades returns a copy of the trade history in execution order.
func (l *Ledger) Trades() []Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Trade, len(l.trades))
	copy(out, l.trades)
	return out
}
