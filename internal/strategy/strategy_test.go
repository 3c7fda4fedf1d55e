package strategy

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

// makeBars builds daily bars from close prices.
func makeBars(closes ...float64) []types.Bar {
	start := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, c := range closes {
		bars[i] = types.Bar{
			Date:     start.AddDate(0, 0, i),
			Open:     c,
			High:     c + 1,
			Low:      c - 1,
			Close:    c,
			Volume:   1000,
			Turnover: optional.None[float64](),
		}
	}

	return bars
}

// column turns plain floats into indicator cells; NaN-free by
// construction, use noneAt to punch warm-up holes.
func column(values ...float64) []indicator.Value {
	out := make([]indicator.Value, len(values))
	for i, v := range values {
		out[i] = optional.Some(v)
	}

	return out
}

func noneAt(values []indicator.Value, indices ...int) []indicator.Value {
	for _, i := range indices {
		values[i] = optional.None[float64]()
	}

	return values
}

// fakeView is a stub portfolio snapshot for sizing tests.
type fakeView struct {
	cash      float64
	positions map[string]float64
	rate      float64
}

func (f fakeView) Cash() float64 { return f.cash }

func (f fakeView) PositionQuantity(symbol string) float64 { return f.positions[symbol] }

func (f fakeView) TotalValue() float64 { return f.cash }

func (f fakeView) CommissionRate() float64 { return f.rate }

// AllInSizerTestSuite is a test suite for the shared position sizer
type AllInSizerTestSuite struct {
	suite.Suite
}

func (suite *AllInSizerTestSuite) TestBuySizesWholeSharesFromCash() {
	bar := makeBars(10)[0]
	signal := types.Signal{Type: types.SignalTypeBuy, Symbol: "ACME"}

	view := fakeView{cash: 10000, rate: 0}
	suite.Equal(1000.0, allInSizer{}.PositionSize(bar, signal, view))
}

func (suite *AllInSizerTestSuite) TestBuyAccountsForCommission() {
	bar := makeBars(10)[0]
	signal := types.Signal{Type: types.SignalTypeBuy, Symbol: "ACME"}

	// 10000 / (10 * 1.0003) = 999.7, floored to whole shares
	view := fakeView{cash: 10000, rate: 0.0003}
	suite.Equal(999.0, allInSizer{}.PositionSize(bar, signal, view))
}

func (suite *AllInSizerTestSuite) TestBuyZeroPrice() {
	bar := makeBars(0)[0]
	signal := types.Signal{Type: types.SignalTypeBuy, Symbol: "ACME"}

	suite.Equal(0.0, allInSizer{}.PositionSize(bar, signal, fakeView{cash: 10000}))
}

func (suite *AllInSizerTestSuite) TestSellReturnsFullPosition() {
	bar := makeBars(10)[0]
	signal := types.Signal{Type: types.SignalTypeSell, Symbol: "ACME"}

	view := fakeView{positions: map[string]float64{"ACME": 42}}
	suite.Equal(42.0, allInSizer{}.PositionSize(bar, signal, view))
}

func (suite *AllInSizerTestSuite) TestHoldSizesNothing() {
	bar := makeBars(10)[0]
	signal := types.Signal{Type: types.SignalTypeHold}

	suite.Equal(0.0, allInSizer{}.PositionSize(bar, signal, fakeView{cash: 10000}))
}

func TestAllInSizerTestSuite(t *testing.T) {
	suite.Run(t, new(AllInSizerTestSuite))
}

// LookaheadTestSuite checks that signals depend only on history.
type LookaheadTestSuite struct {
	suite.Suite
}

func (suite *LookaheadTestSuite) TestSignalsUnchangedUnderTruncation() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i) + 3*float64(i%4)
	}

	strategies := []Strategy{
		NewMACross(5, 20),
		NewRSIThreshold(30, 70),
		NewMACDCross(),
		NewBollingerBreakout(),
	}

	for _, strat := range strategies {
		suite.Run(strat.Name(), func() {
			full, err := indicator.Annotate(makeBars(closes...), indicator.DefaultConfig())
			suite.Require().NoError(err)

			truncated, err := indicator.Annotate(makeBars(closes[:25]...), indicator.DefaultConfig())
			suite.Require().NoError(err)

			fullSignals, err := strat.GenerateSignals(full)
			suite.Require().NoError(err)

			prefixSignals, err := strat.GenerateSignals(truncated)
			suite.Require().NoError(err)

			suite.Equal(fullSignals[:25], prefixSignals)
		})
	}
}

func TestLookaheadTestSuite(t *testing.T) {
	suite.Run(t, new(LookaheadTestSuite))
}
