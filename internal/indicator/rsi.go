package indicator

import (
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// RSI computes the relative strength index using simple rolling means of
// gains and losses over a trailing window.
type RSI struct {
	period int
}

// NewRSI creates an RSI indicator. The conventional period is 14.
func NewRSI(period int) *RSI {
	return &RSI{period: period}
}

// Name returns the name of the indicator.
func (r *RSI) Name() types.IndicatorType {
	return types.IndicatorTypeRSI
}

// Columns returns the column names the indicator produces.
func (r *RSI) Columns() []string {
	return []string{ColumnRSI}
}

// Apply attaches the RSI column to the series. The first defined cell is
// at index period since period deltas are required. When the window
// contains no losses RSI is 100; when it contains no gains the formula
// yields 0.
func (r *RSI) Apply(series *Series) error {
	closes := series.Closes()
	out := undefinedColumn(len(closes))

	if len(closes) <= r.period {
		return series.SetColumn(ColumnRSI, out)
	}

	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))

	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	gainSum := 0.0
	lossSum := 0.0

	for i := 1; i < len(closes); i++ {
		gainSum += gains[i]
		lossSum += losses[i]

		if i > r.period {
			gainSum -= gains[i-r.period]
			lossSum -= losses[i-r.period]
		}

		if i < r.period {
			continue
		}

		avgGain := gainSum / float64(r.period)
		avgLoss := lossSum / float64(r.period)

		if avgLoss == 0 {
			out[i] = optional.Some(100.0)

			continue
		}

		out[i] = optional.Some(100 - 100/(1+avgGain/avgLoss))
	}

	return series.SetColumn(ColumnRSI, out)
}
