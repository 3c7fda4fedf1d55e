package indicator

import (
	"math"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// BollingerBands computes the middle band (simple moving average), the
// upper and lower bands at k standard deviations, the middle-relative
// band width and %B.
type BollingerBands struct {
	period int
	k      float64
}

// NewBollingerBands creates a Bollinger Bands indicator. The conventional
// parameters are period=20, k=2.
func NewBollingerBands(period int, k float64) *BollingerBands {
	return &BollingerBands{period: period, k: k}
}

// Name returns the name of the indicator.
func (b *BollingerBands) Name() types.IndicatorType {
	return types.IndicatorTypeBollingerBands
}

// Columns returns the column names the indicator produces.
func (b *BollingerBands) Columns() []string {
	return []string{ColumnBBMiddle, ColumnBBUpper, ColumnBBLower, ColumnBBWidth, ColumnBBPercentB}
}

// Apply attaches the band columns to the series. The band deviation uses
// the sample standard deviation of the window. Width and %B are undefined
// when their denominators are zero (flat window or zero middle band).
func (b *BollingerBands) Apply(series *Series) error {
	closes := series.Closes()
	middle := rollingMean(closes, b.period)
	upper := undefinedColumn(len(closes))
	lower := undefinedColumn(len(closes))
	width := undefinedColumn(len(closes))
	percentB := undefinedColumn(len(closes))

	for i := range closes {
		if middle[i].IsNone() {
			continue
		}

		mean := middle[i].Unwrap()
		deviation := sampleStdDev(closes[i-b.period+1:i+1], mean)
		upperValue := mean + b.k*deviation
		lowerValue := mean - b.k*deviation
		upper[i] = optional.Some(upperValue)
		lower[i] = optional.Some(lowerValue)

		if mean != 0 {
			width[i] = optional.Some((upperValue - lowerValue) / mean)
		}

		if band := upperValue - lowerValue; band != 0 {
			percentB[i] = optional.Some((closes[i] - lowerValue) / band)
		}
	}

	columns := []struct {
		name   string
		values []Value
	}{
		{ColumnBBMiddle, middle},
		{ColumnBBUpper, upper},
		{ColumnBBLower, lower},
		{ColumnBBWidth, width},
		{ColumnBBPercentB, percentB},
	}

	for _, column := range columns {
		if err := series.SetColumn(column.name, column.values); err != nil {
			return err
		}
	}

	return nil
}

// sampleStdDev computes the sample standard deviation of window around
// mean. A single-element window has zero deviation.
func sampleStdDev(window []float64, mean float64) float64 {
	if len(window) < 2 {
		return 0
	}

	sum := 0.0

	for _, v := range window {
		diff := v - mean
		sum += diff * diff
	}

	return math.Sqrt(sum / float64(len(window)-1))
}
