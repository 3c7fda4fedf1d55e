// Package indicator annotates an OHLCV bar series with technical
// indicator columns. Annotation is deterministic and side-effect free:
// the input bars are never mutated, and warm-up cells for which an
// indicator's window exceeds the available history are represented as
// first-class undefined values instead of NaN sentinels.
package indicator

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
)

// Value is one indicator cell. None marks a warm-up bar.
type Value = optional.Option[float64]

// Indicator is implemented by every technical indicator. Apply computes
// the indicator's columns over the whole series and stores them on it.
type Indicator interface {
	// Name returns the indicator family name
	Name() types.IndicatorType
	// Columns returns the column names the indicator produces
	Columns() []string
	// Apply computes the columns and attaches them to the series
	Apply(series *Series) error
}

// Series is a bar sequence extended with named indicator columns.
type Series struct {
	bars    []types.Bar
	columns map[string][]Value
	order   []string
}

// NewSeries creates a series over a private copy of bars.
func NewSeries(bars []types.Bar) *Series {
	copied := make([]types.Bar, len(bars))
	copy(copied, bars)

	return &Series{
		bars:    copied,
		columns: make(map[string][]Value),
		order:   nil,
	}
}

// Len returns the number of bars in the series.
func (s *Series) Len() int {
	return len(s.bars)
}

// Bars returns the underlying bars. Callers must treat the slice as
// read-only.
func (s *Series) Bars() []types.Bar {
	return s.bars
}

// Bar returns the bar at index i.
func (s *Series) Bar(i int) types.Bar {
	return s.bars[i]
}

// Closes returns the close prices of all bars.
func (s *Series) Closes() []float64 {
	closes := make([]float64, len(s.bars))
	for i, bar := range s.bars {
		closes[i] = bar.Close
	}

	return closes
}

// SetColumn attaches a named column. The column length must equal the
// number of bars and the name must not already exist.
func (s *Series) SetColumn(name string, values []Value) error {
	if len(values) != len(s.bars) {
		return errors.Newf(errors.ErrCodeIndicatorCalculation, "column %s has %d values for %d bars", name, len(values), len(s.bars))
	}

	if _, exists := s.columns[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "column %s already exists", name)
	}

	s.columns[name] = values
	s.order = append(s.order, name)

	return nil
}

// Column returns a named column.
func (s *Series) Column(name string) ([]Value, error) {
	values, exists := s.columns[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeIndicatorNotFound, "column %s not found", name)
	}

	return values, nil
}

// HasColumn reports whether a named column exists.
func (s *Series) HasColumn(name string) bool {
	_, exists := s.columns[name]

	return exists
}

// Value returns the cell of a named column at index i. Missing columns
// and out-of-range indices yield None, matching the warm-up convention.
func (s *Series) Value(name string, i int) Value {
	values, exists := s.columns[name]
	if !exists || i < 0 || i >= len(values) {
		return optional.None[float64]()
	}

	return values[i]
}

// ColumnNames returns column names in attachment order.
func (s *Series) ColumnNames() []string {
	names := make([]string, len(s.order))
	copy(names, s.order)

	return names
}

// Column name helpers. Window-parameterized indicators encode the window
// in the column name the way charting tools label them (MA_5, VOL_MA_10).
const (
	ColumnMACD       = "MACD"
	ColumnMACDSignal = "MACD_Signal"
	ColumnMACDHist   = "MACD_Hist"
	ColumnRSI        = "RSI"
	ColumnBBMiddle   = "BB_Middle"
	ColumnBBUpper    = "BB_Upper"
	ColumnBBLower    = "BB_Lower"
	ColumnBBWidth    = "BB_Width"
	ColumnBBPercentB = "BB_PercentB"
	ColumnKDJK       = "KDJ_K"
	ColumnKDJD       = "KDJ_D"
	ColumnKDJJ       = "KDJ_J"
	ColumnATR        = "ATR"
	ColumnOBV        = "OBV"
	ColumnMFI        = "MFI"
)

// MAColumn returns the column name of a simple moving average window.
func MAColumn(period int) string {
	return fmt.Sprintf("MA_%d", period)
}

// EMAColumn returns the column name of an exponential moving average window.
func EMAColumn(period int) string {
	return fmt.Sprintf("EMA_%d", period)
}

// VolumeMAColumn returns the column name of a rolling volume mean window.
func VolumeMAColumn(period int) string {
	return fmt.Sprintf("VOL_MA_%d", period)
}

// VolumeRatioColumn returns the column name of a relative volume window.
func VolumeRatioColumn(period int) string {
	return fmt.Sprintf("VOL_RATIO_%d", period)
}

// rollingMean computes a trailing window mean. Cells before the window is
// full are undefined.
func rollingMean(values []float64, period int) []Value {
	out := undefinedColumn(len(values))
	if period <= 0 || len(values) < period {
		return out
	}

	sum := 0.0

	for i, v := range values {
		sum += v
		if i >= period {
			sum -= values[i-period]
		}

		if i >= period-1 {
			out[i] = optional.Some(sum / float64(period))
		}
	}

	return out
}

// undefinedColumn returns a column of n undefined cells.
func undefinedColumn(n int) []Value {
	out := make([]Value, n)
	for i := range out {
		out[i] = optional.None[float64]()
	}

	return out
}
