package strategy

import (
	"fmt"

	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// MACDCross buys when the MACD line crosses above its signal line and
// sells on the reverse cross.
type MACDCross struct {
	allInSizer
}

// NewMACDCross creates a MACD crossover strategy.
func NewMACDCross() *MACDCross {
	return &MACDCross{}
}

// Name returns the name of the strategy.
func (s *MACDCross) Name() string {
	return "MACD_Cross"
}

// GenerateSignals requires defined MACD and signal lines at both the
// current and the previous bar; warm-up bars produce holds.
func (s *MACDCross) GenerateSignals(series *indicator.Series) ([]types.Signal, error) {
	macd, err := series.Column(indicator.ColumnMACD)
	if err != nil {
		return nil, err
	}

	signal, err := series.Column(indicator.ColumnMACDSignal)
	if err != nil {
		return nil, err
	}

	signals := make([]types.Signal, series.Len())

	for i := 0; i < series.Len(); i++ {
		signals[i] = holdSignal(s.Name(), series.Bar(i).Date, types.IndicatorTypeMACD)

		macdValue, macdOK := cell(macd, i)
		signalValue, signalOK := cell(signal, i)
		prevMACD, prevMACDOK := cell(macd, i-1)
		prevSignal, prevSignalOK := cell(signal, i-1)

		if !macdOK || !signalOK || !prevMACDOK || !prevSignalOK {
			continue
		}

		if prevMACD <= prevSignal && macdValue > signalValue {
			signals[i].Type = types.SignalTypeBuy
			signals[i].Reason = fmt.Sprintf("MACD %.4f crossed above signal %.4f", macdValue, signalValue)
		} else if prevMACD >= prevSignal && macdValue < signalValue {
			signals[i].Type = types.SignalTypeSell
			signals[i].Reason = fmt.Sprintf("MACD %.4f crossed below signal %.4f", macdValue, signalValue)
		}
	}

	return signals, nil
}
