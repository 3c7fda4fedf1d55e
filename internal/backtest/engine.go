// Package backtest runs deterministic, trade-by-trade simulations of a
// strategy over historical bars. The simulation is strictly sequential:
// all effects of bar i (mark-to-market, equity recording, trade
// execution) are committed before bar i+1 is touched, so no strategy can
// observe the future.
package backtest

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/logger"
	"github.com/rxtech-lab/equity-backtest/internal/portfolio"
	"github.com/rxtech-lab/equity-backtest/internal/strategy"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
	"github.com/rxtech-lab/equity-backtest/pkg/utils"
	"go.uber.org/zap"
)

// OnBarCallback reports simulation progress after each processed bar.
type OnBarCallback func(current, total int)

// Engine orchestrates backtest runs. It holds no per-run state: every
// run constructs a fresh portfolio, so independent runs may execute in
// parallel on separate Engine values or share one.
type Engine struct {
	config Config
	log    *logger.Logger
}

// NewEngine creates an engine, validating the config up front.
func NewEngine(config Config, log *logger.Logger) (*Engine, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Engine{
		config: config,
		log:    log,
	}, nil
}

// Asset is one input series of a multi-asset run with its target
// portfolio weight.
type Asset struct {
	Symbol string
	Bars   []types.Bar
	Weight float64
}

// Run simulates a strategy over a single symbol. An empty series is not
// an error: it yields a zero-trade result with an empty equity curve.
func (e *Engine) Run(symbol string, bars []types.Bar, strat strategy.Strategy, onBar optional.Option[OnBarCallback]) (*types.BacktestResult, error) {
	if strat == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy provided")
	}

	if err := types.ValidateBars(bars); err != nil {
		return nil, err
	}

	pf, err := portfolio.New(e.config.InitialCapital, e.config.CommissionRate, e.log)
	if err != nil {
		return nil, err
	}

	if len(bars) == 0 {
		e.log.Warn("Backtest received an empty bar series",
			zap.String("symbol", symbol),
			zap.String("strategy", strat.Name()),
		)

		return e.buildResult(strat.Name(), symbol, pf, nil, nil), nil
	}

	series, err := indicator.Annotate(bars, e.config.Indicators)
	if err != nil {
		return nil, err
	}

	signals, err := strat.GenerateSignals(series)
	if err != nil {
		return nil, err
	}

	if len(signals) != len(bars) {
		return nil, errors.Newf(errors.ErrCodeBacktestConfigError,
			"strategy %s produced %d signals for %d bars", strat.Name(), len(signals), len(bars))
	}

	equity := make([]types.EquityPoint, 0, len(bars))
	dailyReturns := make([]float64, 0, len(bars))

	for i, bar := range bars {
		pf.UpdatePrices(map[string]float64{symbol: bar.Close}, bar.Date)

		value := pf.TotalValue()
		equity = append(equity, types.EquityPoint{Date: bar.Date, Value: value})
		dailyReturns = append(dailyReturns, dayReturn(equity, i))

		signal := signals[i]
		signal.Symbol = symbol

		if signal.IsActionable() {
			e.applySignal(pf, strat, bar, signal)
		}

		if onBar.IsSome() {
			onBar.Unwrap()(i+1, len(bars))
		}
	}

	return e.buildResult(strat.Name(), symbol, pf, equity, dailyReturns), nil
}

// RunMulti simulates a strategy over several weighted assets. The shared
// date index is the intersection of all assets' dates: a bar missing for
// any asset is skipped for all. Signals are generated per asset on its
// full series before the joint loop; a buy tops the position up toward
// weight * totalValue, a sell liquidates the asset entirely.
func (e *Engine) RunMulti(assets []Asset, strat strategy.Strategy, onBar optional.Option[OnBarCallback]) (*types.BacktestResult, error) {
	if strat == nil {
		return nil, errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy provided")
	}

	if len(assets) == 0 {
		return nil, errors.New(errors.ErrCodeBacktestNoData, "no assets provided")
	}

	if err := validateWeights(assets); err != nil {
		return nil, err
	}

	type assetRun struct {
		asset   Asset
		byDate  map[int64]types.Bar
		signals map[int64]types.Signal
	}

	runs := make([]assetRun, 0, len(assets))
	symbols := make([]string, 0, len(assets))

	for _, asset := range assets {
		if err := types.ValidateBars(asset.Bars); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeBacktestNoData, err, "invalid bars for %s", asset.Symbol)
		}

		series, err := indicator.Annotate(asset.Bars, e.config.Indicators)
		if err != nil {
			return nil, err
		}

		signals, err := strat.GenerateSignals(series)
		if err != nil {
			return nil, err
		}

		run := assetRun{
			asset:   asset,
			byDate:  make(map[int64]types.Bar, len(asset.Bars)),
			signals: make(map[int64]types.Signal, len(signals)),
		}

		for i, bar := range asset.Bars {
			key := bar.Date.UnixNano()
			run.byDate[key] = bar
			run.signals[key] = signals[i]
		}

		runs = append(runs, run)
		symbols = append(symbols, asset.Symbol)
	}

	barMaps := make([]map[int64]types.Bar, len(runs))
	for i, run := range runs {
		barMaps[i] = run.byDate
	}

	dates := intersectDates(barMaps)

	pf, err := portfolio.New(e.config.InitialCapital, e.config.CommissionRate, e.log)
	if err != nil {
		return nil, err
	}

	joinedSymbol := strings.Join(symbols, ",")

	if len(dates) == 0 {
		e.log.Warn("Multi-asset backtest has no common dates",
			zap.String("symbols", joinedSymbol),
		)

		return e.buildResult(strat.Name(), joinedSymbol, pf, nil, nil), nil
	}

	equity := make([]types.EquityPoint, 0, len(dates))
	dailyReturns := make([]float64, 0, len(dates))

	for i, key := range dates {
		date := time.Unix(0, key)
		prices := make(map[string]float64, len(runs))

		for _, run := range runs {
			prices[run.asset.Symbol] = run.byDate[key].Close
		}

		pf.UpdatePrices(prices, date)

		value := pf.TotalValue()
		equity = append(equity, types.EquityPoint{Date: date, Value: value})
		dailyReturns = append(dailyReturns, dayReturn(equity, i))

		for _, run := range runs {
			bar := run.byDate[key]
			signal := run.signals[key]
			signal.Symbol = run.asset.Symbol

			switch signal.Type {
			case types.SignalTypeBuy:
				e.topUpPosition(pf, run.asset, bar)
			case types.SignalTypeSell:
				e.liquidatePosition(pf, run.asset.Symbol, bar)
			}
		}

		if onBar.IsSome() {
			onBar.Unwrap()(i+1, len(dates))
		}
	}

	return e.buildResult(strat.Name(), joinedSymbol, pf, equity, dailyReturns), nil
}

// GenerateSchemaJSON exposes the engine config schema.
func (e *Engine) GenerateSchemaJSON() (string, error) {
	return e.config.GenerateSchemaJSON()
}

// applySignal asks the strategy for a size and executes the trade. A size
// of 0 is a no-op; rejected orders are logged and the simulation
// continues, signals are never queued or retried across bars.
func (e *Engine) applySignal(pf *portfolio.Portfolio, strat strategy.Strategy, bar types.Bar, signal types.Signal) {
	quantity := strat.PositionSize(bar, signal, pf)
	if quantity <= 0 {
		return
	}

	var err error

	switch signal.Type {
	case types.SignalTypeBuy:
		_, err = pf.Buy(signal.Symbol, quantity, bar.Close, bar.Date)
	case types.SignalTypeSell:
		_, err = pf.Sell(signal.Symbol, quantity, bar.Close, bar.Date)
	}

	if err != nil {
		e.log.Warn("Trade rejected",
			zap.String("symbol", signal.Symbol),
			zap.String("signal", string(signal.Type)),
			zap.Float64("quantity", quantity),
			zap.Error(err),
		)
	}
}

// topUpPosition buys toward the asset's target weight of total value,
// bounded by available cash, in whole shares.
func (e *Engine) topUpPosition(pf *portfolio.Portfolio, asset Asset, bar types.Bar) {
	if bar.Close <= 0 {
		return
	}

	target := asset.Weight * pf.TotalValue()
	held := pf.PositionQuantity(asset.Symbol) * bar.Close
	shortfall := target - held

	if shortfall <= 0 {
		return
	}

	perShare := bar.Close * (1 + e.config.CommissionRate)
	quantity := utils.RoundToDecimalPrecision(math.Min(shortfall, pf.Cash())/perShare, 0)

	if quantity <= 0 {
		return
	}

	if _, err := pf.Buy(asset.Symbol, quantity, bar.Close, bar.Date); err != nil {
		e.log.Warn("Top-up buy rejected",
			zap.String("symbol", asset.Symbol),
			zap.Float64("quantity", quantity),
			zap.Error(err),
		)
	}
}

// liquidatePosition sells the full held quantity of the asset.
func (e *Engine) liquidatePosition(pf *portfolio.Portfolio, symbol string, bar types.Bar) {
	quantity := pf.PositionQuantity(symbol)
	if quantity <= 0 {
		return
	}

	if _, err := pf.Sell(symbol, quantity, bar.Close, bar.Date); err != nil {
		e.log.Warn("Liquidation rejected",
			zap.String("symbol", symbol),
			zap.Float64("quantity", quantity),
			zap.Error(err),
		)
	}
}

func (e *Engine) buildResult(strategyName, symbol string, pf *portfolio.Portfolio, equity []types.EquityPoint, dailyReturns []float64) *types.BacktestResult {
	trades := pf.Trades()
	metrics := ComputeMetrics(e.config.InitialCapital, equity, dailyReturns, trades, e.config.TradingDaysPerYear)

	finalValue := e.config.InitialCapital

	var startDate, endDate time.Time

	if len(equity) > 0 {
		startDate = equity[0].Date
		endDate = equity[len(equity)-1].Date
		finalValue = equity[len(equity)-1].Value
	}

	return &types.BacktestResult{
		StrategyName:   strategyName,
		Symbol:         symbol,
		StartDate:      startDate,
		EndDate:        endDate,
		InitialCapital: e.config.InitialCapital,
		FinalValue:     finalValue,
		TotalReturn:    metrics.TotalReturn,
		AnnualReturn:   metrics.AnnualReturn,
		MaxDrawdown:    metrics.MaxDrawdown,
		SharpeRatio:    metrics.SharpeRatio,
		TradeCount:     metrics.TradeCount,
		WinRate:        metrics.WinRate,
		EquityCurve:    equity,
		Trades:         trades,
		FinalPositions: pf.Positions(),
	}
}

// dayReturn computes the close-to-close return of the equity curve at
// index i; the first bar's return is 0.
func dayReturn(equity []types.EquityPoint, i int) float64 {
	if i == 0 {
		return 0
	}

	prev := equity[i-1].Value
	if prev == 0 {
		return 0
	}

	return (equity[i].Value - prev) / prev
}

func validateWeights(assets []Asset) error {
	seen := make(map[string]struct{}, len(assets))
	sum := 0.0

	for _, asset := range assets {
		if _, dup := seen[asset.Symbol]; dup {
			return errors.Newf(errors.ErrCodeInvalidParameter, "duplicate asset symbol %s", asset.Symbol)
		}

		seen[asset.Symbol] = struct{}{}

		if asset.Weight <= 0 || asset.Weight > 1 {
			return errors.Newf(errors.ErrCodeInvalidWeight, "weight for %s must be in (0, 1], got %f", asset.Symbol, asset.Weight)
		}

		sum += asset.Weight
	}

	if sum > 1+1e-9 {
		return errors.Newf(errors.ErrCodeInvalidWeight, "asset weights sum to %f, must not exceed 1", sum)
	}

	return nil
}

// intersectDates returns the sorted date keys present in every map.
func intersectDates(barMaps []map[int64]types.Bar) []int64 {
	if len(barMaps) == 0 {
		return nil
	}

	dates := make([]int64, 0, len(barMaps[0]))

	for key := range barMaps[0] {
		present := true

		for _, other := range barMaps[1:] {
			if _, ok := other[key]; !ok {
				present = false

				break
			}
		}

		if present {
			dates = append(dates, key)
		}
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i] < dates[j] })

	return dates
}
