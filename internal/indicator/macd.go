package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// MACD computes the moving average convergence divergence line, its
// signal line and the histogram between them.
type MACD struct {
	fast   int
	slow   int
	signal int
}

// NewMACD creates a MACD indicator. The conventional parameters are
// fast=12, slow=26, signal=9.
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: fast, slow: slow, signal: signal}
}

// Name returns the name of the indicator.
func (m *MACD) Name() types.IndicatorType {
	return types.IndicatorTypeMACD
}

// Columns returns the column names the indicator produces.
func (m *MACD) Columns() []string {
	return []string{ColumnMACD, ColumnMACDSignal, ColumnMACDHist}
}

// Apply attaches the MACD, signal and histogram columns to the series.
// The MACD line is defined once both EMAs are defined; the signal line
// is an EMA over the defined portion of the MACD line, so it warms up
// signal-1 bars later.
func (m *MACD) Apply(series *Series) error {
	closes := series.Closes()
	fastEMA := emaValues(closes, m.fast)
	slowEMA := emaValues(closes, m.slow)

	macdLine := undefinedColumn(len(closes))
	firstDefined := -1

	var definedValues []float64

	for i := range closes {
		if fastEMA[i].IsNone() || slowEMA[i].IsNone() {
			continue
		}

		value := fastEMA[i].Unwrap() - slowEMA[i].Unwrap()
		macdLine[i] = optional.Some(value)

		if firstDefined < 0 {
			firstDefined = i
		}

		definedValues = append(definedValues, value)
	}

	signalLine := undefinedColumn(len(closes))

	if firstDefined >= 0 {
		signalValues := emaValues(definedValues, m.signal)
		for j, v := range signalValues {
			signalLine[firstDefined+j] = v
		}
	}

	histogram := undefinedColumn(len(closes))

	for i := range closes {
		if macdLine[i].IsNone() || signalLine[i].IsNone() {
			continue
		}

		histogram[i] = optional.Some(macdLine[i].Unwrap() - signalLine[i].Unwrap())
	}

	if err := series.SetColumn(ColumnMACD, macdLine); err != nil {
		return err
	}

	if err := series.SetColumn(ColumnMACDSignal, signalLine); err != nil {
		return err
	}

	return series.SetColumn(ColumnMACDHist, histogram)
}
