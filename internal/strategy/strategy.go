// Package strategy defines the trading strategy contract and the built-in
// strategies. Signal generation is a pure function of the indicator
// series: strategies never see the portfolio while generating signals,
// which rules out lookahead and state-leakage bugs. Position sizing sees
// a read-only portfolio view and never mutates it.
package strategy

import (
	"time"

	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/utils"
)

// PortfolioView is the read-only portfolio snapshot handed to position
// sizing.
type PortfolioView interface {
	// Cash returns the available cash
	Cash() float64
	// PositionQuantity returns the held quantity for a symbol, 0 if none
	PositionQuantity(symbol string) float64
	// TotalValue returns cash plus the market value of all positions
	TotalValue() float64
	// CommissionRate returns the proportional commission rate
	CommissionRate() float64
}

// Strategy is the contract every trading strategy implements.
type Strategy interface {
	// Name returns the name of the strategy
	Name() string
	// GenerateSignals produces exactly one signal per bar of the series
	GenerateSignals(series *indicator.Series) ([]types.Signal, error)
	// PositionSize decides how many shares to trade for a signal against
	// the current portfolio. Returning 0 means no trade.
	PositionSize(bar types.Bar, signal types.Signal, portfolio PortfolioView) float64
}

// allInSizer sizes buys to the largest whole-share quantity the cash can
// cover including commission, and sells the full held position. It is
// embedded by the built-in strategies.
type allInSizer struct{}

func (allInSizer) PositionSize(bar types.Bar, signal types.Signal, portfolio PortfolioView) float64 {
	switch signal.Type {
	case types.SignalTypeBuy:
		if bar.Close <= 0 {
			return 0
		}

		affordable := portfolio.Cash() / (bar.Close * (1 + portfolio.CommissionRate()))

		return utils.RoundToDecimalPrecision(affordable, 0)
	case types.SignalTypeSell:
		return portfolio.PositionQuantity(signal.Symbol)
	default:
		return 0
	}
}

// holdSignal builds the no-action signal for one bar.
func holdSignal(name string, date time.Time, ind types.IndicatorType) types.Signal {
	return types.Signal{
		Date:      date,
		Type:      types.SignalTypeHold,
		Name:      name,
		Reason:    "",
		Symbol:    "",
		Indicator: ind,
	}
}

// cell unwraps an indicator cell, reporting whether it is defined.
// Undefined warm-up cells mean "no signal this bar", never zero.
func cell(column []indicator.Value, i int) (float64, bool) {
	if i < 0 || i >= len(column) || column[i].IsNone() {
		return 0, false
	}

	return column[i].Unwrap(), true
}
