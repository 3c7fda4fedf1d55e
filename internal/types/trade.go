package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type TradeAction string

const (
	TradeActionBuy  TradeAction = "BUY"
	TradeActionSell TradeAction = "SELL"
)

// Trade is an immutable record of one executed portfolio operation. Trades
// are appended to the portfolio's trade log and never mutated afterwards.
type Trade struct {
	ID         string      `yaml:"id" json:"id"`
	Symbol     string      `yaml:"symbol" json:"symbol"`
	Action     TradeAction `yaml:"action" json:"action"`
	Quantity   float64     `yaml:"quantity" json:"quantity"`
	Price      float64     `yaml:"price" json:"price"`
	Date       time.Time   `yaml:"date" json:"date"`
	Commission float64     `yaml:"commission" json:"commission"`
}

// Amount returns quantity * price without commission.
func (t Trade) Amount() float64 {
	amount, _ := decimal.NewFromFloat(t.Quantity).Mul(decimal.NewFromFloat(t.Price)).Float64()

	return amount
}

// Position represents current holdings of one symbol. A position is owned
// exclusively by the portfolio that created it and is removed from the
// position map when its quantity reaches zero.
type Position struct {
	Symbol       string    `yaml:"symbol" json:"symbol"`
	Quantity     float64   `yaml:"quantity" json:"quantity"`
	EntryPrice   float64   `yaml:"entry_price" json:"entry_price"`
	EntryDate    time.Time `yaml:"entry_date" json:"entry_date"`
	CurrentPrice float64   `yaml:"current_price" json:"current_price"`
	CurrentDate  time.Time `yaml:"current_date" json:"current_date"`
}

// MarketValue returns quantity * current price.
func (p *Position) MarketValue() float64 {
	value, _ := decimal.NewFromFloat(p.Quantity).Mul(decimal.NewFromFloat(p.CurrentPrice)).Float64()

	return value
}

// UnrealizedPnL returns the mark-to-market profit relative to the average
// entry price.
func (p *Position) UnrealizedPnL() float64 {
	current := decimal.NewFromFloat(p.CurrentPrice)
	entry := decimal.NewFromFloat(p.EntryPrice)
	qty := decimal.NewFromFloat(p.Quantity)

	pnl, _ := current.Sub(entry).Mul(qty).Float64()

	return pnl
}
