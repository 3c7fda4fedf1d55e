package strategy

import (
	"fmt"

	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// BollingerBreakout buys when the close crosses back above the lower
// band from below and sells when it crosses below the upper band from
// above.
type BollingerBreakout struct {
	allInSizer
}

// NewBollingerBreakout creates a Bollinger breakout strategy.
func NewBollingerBreakout() *BollingerBreakout {
	return &BollingerBreakout{}
}

// Name returns the name of the strategy.
func (s *BollingerBreakout) Name() string {
	return "Bollinger_Breakout"
}

// GenerateSignals requires defined bands at both the current and the
// previous bar; warm-up bars produce holds.
func (s *BollingerBreakout) GenerateSignals(series *indicator.Series) ([]types.Signal, error) {
	upper, err := series.Column(indicator.ColumnBBUpper)
	if err != nil {
		return nil, err
	}

	lower, err := series.Column(indicator.ColumnBBLower)
	if err != nil {
		return nil, err
	}

	signals := make([]types.Signal, series.Len())

	for i := 0; i < series.Len(); i++ {
		bar := series.Bar(i)
		signals[i] = holdSignal(s.Name(), bar.Date, types.IndicatorTypeBollingerBands)

		upperValue, upperOK := cell(upper, i)
		lowerValue, lowerOK := cell(lower, i)
		prevUpper, prevUpperOK := cell(upper, i-1)
		prevLower, prevLowerOK := cell(lower, i-1)

		if !upperOK || !lowerOK || !prevUpperOK || !prevLowerOK {
			continue
		}

		prevClose := series.Bar(i - 1).Close

		if prevClose < prevLower && bar.Close >= lowerValue {
			signals[i].Type = types.SignalTypeBuy
			signals[i].Reason = fmt.Sprintf("close %.2f recovered above lower band %.2f", bar.Close, lowerValue)
		} else if prevClose > prevUpper && bar.Close <= upperValue {
			signals[i].Type = types.SignalTypeSell
			signals[i].Reason = fmt.Sprintf("close %.2f fell below upper band %.2f", bar.Close, upperValue)
		}
	}

	return signals, nil
}
