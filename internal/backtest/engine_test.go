package backtest

import (
	"testing"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/logger"
	"github.com/rxtech-lab/equity-backtest/internal/strategy"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
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

// scriptedStrategy emits a fixed action at chosen bar indices. Buys are
// sized to a fixed share count, sells liquidate the position.
type scriptedStrategy struct {
	actions map[int]types.SignalType
	size    float64
}

func (s *scriptedStrategy) Name() string { return "Scripted" }

func (s *scriptedStrategy) GenerateSignals(series *indicator.Series) ([]types.Signal, error) {
	signals := make([]types.Signal, series.Len())

	for i := range signals {
		signals[i] = types.Signal{Date: series.Bar(i).Date, Type: types.SignalTypeHold, Name: s.Name()}
		if action, ok := s.actions[i]; ok {
			signals[i].Type = action
		}
	}

	return signals, nil
}

func (s *scriptedStrategy) PositionSize(bar types.Bar, signal types.Signal, view strategy.PortfolioView) float64 {
	if signal.Type == types.SignalTypeSell {
		return view.PositionQuantity(signal.Symbol)
	}

	return s.size
}

// miscountingStrategy returns the wrong number of signals.
type miscountingStrategy struct {
	scriptedStrategy
}

func (s *miscountingStrategy) GenerateSignals(series *indicator.Series) ([]types.Signal, error) {
	return make([]types.Signal, series.Len()+1), nil
}

// EngineTestSuite is a test suite for the backtest engine
type EngineTestSuite struct {
	suite.Suite
	log *logger.Logger
}

func (suite *EngineTestSuite) SetupSuite() {
	suite.log = logger.NewNopLogger()
}

func (suite *EngineTestSuite) newEngine(capital, commission float64) *Engine {
	config := DefaultConfig()
	config.InitialCapital = capital
	config.CommissionRate = commission

	engine, err := NewEngine(config, suite.log)
	suite.Require().NoError(err)

	return engine
}

func (suite *EngineTestSuite) TestNewEngineRejectsInvalidConfig() {
	config := DefaultConfig()
	config.InitialCapital = -1

	_, err := NewEngine(config, suite.log)
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func (suite *EngineTestSuite) TestRunRequiresStrategy() {
	engine := suite.newEngine(100_000, 0)

	_, err := engine.Run("ACME", makeBars(10), nil, optional.None[OnBarCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoStrategy))
}

func (suite *EngineTestSuite) TestRunEmptyBars() {
	engine := suite.newEngine(100_000, 0)

	result, err := engine.Run("ACME", nil, strategy.NewMACross(5, 20), optional.None[OnBarCallback]())
	suite.Require().NoError(err)

	suite.Equal(0, result.TradeCount)
	suite.Empty(result.EquityCurve)
	suite.Equal(100_000.0, result.FinalValue)
	suite.Equal(0.0, result.TotalReturn)
	suite.Equal(0.0, result.SharpeRatio)
}

func (suite *EngineTestSuite) TestRunRejectsUnorderedBars() {
	bars := makeBars(10, 11, 12)
	bars[1].Date = bars[2].Date.AddDate(0, 0, 5)

	engine := suite.newEngine(100_000, 0)

	_, err := engine.Run("ACME", bars, strategy.NewMACross(5, 20), optional.None[OnBarCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeUnorderedData))
}

func (suite *EngineTestSuite) TestRunRejectsSignalCountMismatch() {
	engine := suite.newEngine(100_000, 0)

	_, err := engine.Run("ACME", makeBars(10, 11), &miscountingStrategy{}, optional.None[OnBarCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestConfigError))
}

func (suite *EngineTestSuite) TestEquityRecordedBeforeTrading() {
	strat := &scriptedStrategy{
		actions: map[int]types.SignalType{0: types.SignalTypeBuy, 3: types.SignalTypeSell},
		size:    100,
	}

	engine := suite.newEngine(100_000, 0)

	result, err := engine.Run("ACME", makeBars(10, 12, 11, 13), strat, optional.None[OnBarCallback]())
	suite.Require().NoError(err)

	// The first equity point is taken before the first trade executes
	suite.Require().Len(result.EquityCurve, 4)
	suite.Equal(100_000.0, result.EquityCurve[0].Value)
	suite.InDelta(100_200.0, result.EquityCurve[1].Value, 1e-9)
	suite.InDelta(100_100.0, result.EquityCurve[2].Value, 1e-9)
	suite.InDelta(100_300.0, result.EquityCurve[3].Value, 1e-9)

	suite.Equal(2, result.TradeCount)
	suite.InDelta(100_300.0, result.FinalValue, 1e-9)
	suite.InDelta(0.003, result.TotalReturn, 1e-9)
	suite.InDelta(1.0, result.WinRate, 1e-9)
	suite.Empty(result.FinalPositions)
}

func (suite *EngineTestSuite) TestFlatSeriesHasZeroSharpe() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}

	engine := suite.newEngine(100_000, 0)

	result, err := engine.Run("ACME", makeBars(closes...), strategy.NewMACross(5, 20), optional.None[OnBarCallback]())
	suite.Require().NoError(err)

	suite.Equal(0, result.TradeCount)
	suite.Equal(0.0, result.SharpeRatio)
	suite.Equal(0.0, result.MaxDrawdown)

	for _, point := range result.EquityCurve {
		suite.Equal(100_000.0, point.Value)
	}
}

func (suite *EngineTestSuite) TestRunMACrossEndToEnd() {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}

	engine := suite.newEngine(100_000, 0)

	calls := 0
	onBar := optional.Some[OnBarCallback](func(current, total int) {
		calls++
		suite.Equal(30, total)
	})

	result, err := engine.Run("ACME", makeBars(closes...), strategy.NewMACross(5, 20), onBar)
	suite.Require().NoError(err)
	suite.Equal(30, calls)

	// The golden cross fires at bar 19 (close 119): 840 shares for
	// 99,960, leaving 40 cash
	suite.Equal(1, result.TradeCount)
	suite.Equal(types.TradeActionBuy, result.Trades[0].Action)
	suite.Equal(840.0, result.Trades[0].Quantity)
	suite.Equal(119.0, result.Trades[0].Price)

	suite.Require().Len(result.FinalPositions, 1)
	suite.Equal(840.0, result.FinalPositions[0].Quantity)

	suite.InDelta(40.0+840.0*129.0, result.FinalValue, 1e-9)
	suite.InDelta(0.084, result.TotalReturn, 1e-9)
	suite.Equal(0.0, result.MaxDrawdown)
	suite.Equal(result.EquityCurve[0].Date, result.StartDate)
	suite.Equal(result.EquityCurve[29].Date, result.EndDate)
}

func (suite *EngineTestSuite) TestRunMultiRequiresAssets() {
	engine := suite.newEngine(100_000, 0)

	_, err := engine.RunMulti(nil, strategy.NewMACross(5, 20), optional.None[OnBarCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeBacktestNoData))
}

func (suite *EngineTestSuite) TestRunMultiRejectsBadWeights() {
	engine := suite.newEngine(100_000, 0)
	strat := strategy.NewMACross(5, 20)
	bars := makeBars(10, 11)

	_, err := engine.RunMulti([]Asset{
		{Symbol: "AAA", Bars: bars, Weight: 1.5},
	}, strat, optional.None[OnBarCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidWeight))

	_, err = engine.RunMulti([]Asset{
		{Symbol: "AAA", Bars: bars, Weight: 0.6},
		{Symbol: "BBB", Bars: bars, Weight: 0.6},
	}, strat, optional.None[OnBarCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidWeight))

	_, err = engine.RunMulti([]Asset{
		{Symbol: "AAA", Bars: bars, Weight: 0.3},
		{Symbol: "AAA", Bars: bars, Weight: 0.3},
	}, strat, optional.None[OnBarCallback]())
	suite.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}

func (suite *EngineTestSuite) TestRunMultiIntersectsDates() {
	engine := suite.newEngine(100_000, 0)

	first := makeBars(10, 11, 12, 13)
	second := makeBars(20, 21, 22, 23)[1:]

	result, err := engine.RunMulti([]Asset{
		{Symbol: "AAA", Bars: first, Weight: 0.5},
		{Symbol: "BBB", Bars: second, Weight: 0.5},
	}, &scriptedStrategy{}, optional.None[OnBarCallback]())
	suite.Require().NoError(err)

	// Only the three shared dates survive the inner join
	suite.Require().Len(result.EquityCurve, 3)
	suite.Equal(first[1].Date, result.StartDate)
	suite.Equal(0, result.TradeCount)
	suite.Equal("AAA,BBB", result.Symbol)
}

func (suite *EngineTestSuite) TestRunMultiNoCommonDates() {
	engine := suite.newEngine(100_000, 0)

	first := makeBars(10, 11)
	second := makeBars(20, 21)
	second[0].Date = first[1].Date.AddDate(0, 1, 0)
	second[1].Date = first[1].Date.AddDate(0, 1, 1)

	result, err := engine.RunMulti([]Asset{
		{Symbol: "AAA", Bars: first, Weight: 0.5},
		{Symbol: "BBB", Bars: second, Weight: 0.5},
	}, &scriptedStrategy{}, optional.None[OnBarCallback]())
	suite.Require().NoError(err)

	suite.Empty(result.EquityCurve)
	suite.Equal(0, result.TradeCount)
}

func (suite *EngineTestSuite) TestRunMultiTopUpAndLiquidate() {
	engine := suite.newEngine(100_000, 0)

	strat := &scriptedStrategy{
		actions: map[int]types.SignalType{0: types.SignalTypeBuy, 2: types.SignalTypeSell},
	}

	result, err := engine.RunMulti([]Asset{
		{Symbol: "AAA", Bars: makeBars(10, 10, 10), Weight: 0.5},
	}, strat, optional.None[OnBarCallback]())
	suite.Require().NoError(err)

	// The buy tops up to half of total value (5000 shares at 10), the
	// sell liquidates everything
	suite.Require().Len(result.Trades, 2)
	suite.Equal(types.TradeActionBuy, result.Trades[0].Action)
	suite.Equal(5000.0, result.Trades[0].Quantity)
	suite.Equal(types.TradeActionSell, result.Trades[1].Action)
	suite.Equal(5000.0, result.Trades[1].Quantity)

	suite.Empty(result.FinalPositions)
	suite.InDelta(100_000.0, result.FinalValue, 1e-9)
}

func (suite *EngineTestSuite) TestRunMultiBuyAtTargetIsNoOp() {
	engine := suite.newEngine(100_000, 0)

	// Two consecutive buys on a flat price: the second finds the target
	// weight already met and trades nothing
	strat := &scriptedStrategy{
		actions: map[int]types.SignalType{0: types.SignalTypeBuy, 1: types.SignalTypeBuy},
	}

	result, err := engine.RunMulti([]Asset{
		{Symbol: "AAA", Bars: makeBars(10, 10), Weight: 0.5},
	}, strat, optional.None[OnBarCallback]())
	suite.Require().NoError(err)
	suite.Equal(1, result.TradeCount)
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}
