package indicator

import (
	"math"

	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// ATR computes the average true range as a rolling mean of the true
// range.
type ATR struct {
	period int
}

// NewATR creates an ATR indicator. The conventional period is 14.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

// Name returns the name of the indicator.
func (a *ATR) Name() types.IndicatorType {
	return types.IndicatorTypeATR
}

// Columns returns the column names the indicator produces.
func (a *ATR) Columns() []string {
	return []string{ColumnATR}
}

// Apply attaches the ATR column to the series. The first bar has no
// previous close, so its true range degrades to high-low.
func (a *ATR) Apply(series *Series) error {
	bars := series.Bars()
	trueRanges := make([]float64, len(bars))

	for i, bar := range bars {
		if i == 0 {
			trueRanges[i] = bar.High - bar.Low

			continue
		}

		prevClose := bars[i-1].Close
		trueRanges[i] = math.Max(bar.High-bar.Low, math.Max(math.Abs(bar.High-prevClose), math.Abs(bar.Low-prevClose)))
	}

	return series.SetColumn(ColumnATR, rollingMean(trueRanges, a.period))
}
