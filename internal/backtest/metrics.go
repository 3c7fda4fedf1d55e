package backtest

import (
	"math"

	"github.com/rxtech-lab/equity-backtest/internal/types"
)

// PerformanceMetrics summarizes one equity curve and trade log.
type PerformanceMetrics struct {
	TotalReturn  float64 `yaml:"total_return" json:"total_return"`
	AnnualReturn float64 `yaml:"annual_return" json:"annual_return"`
	MaxDrawdown  float64 `yaml:"max_drawdown" json:"max_drawdown"`
	SharpeRatio  float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	WinRate      float64 `yaml:"win_rate" json:"win_rate"`
	TradeCount   int     `yaml:"trade_count" json:"trade_count"`
}

// ComputeMetrics derives the performance metrics. Degenerate inputs
// (empty curve, zero variance, zero trading days) produce documented
// fallback values instead of NaN or Inf.
func ComputeMetrics(initialCapital float64, equity []types.EquityPoint, dailyReturns []float64, trades []types.Trade, tradingDaysPerYear int) PerformanceMetrics {
	finalValue := initialCapital
	if len(equity) > 0 {
		finalValue = equity[len(equity)-1].Value
	}

	totalReturn := 0.0
	if initialCapital > 0 {
		totalReturn = (finalValue - initialCapital) / initialCapital
	}

	return PerformanceMetrics{
		TotalReturn:  totalReturn,
		AnnualReturn: annualReturn(initialCapital, finalValue, len(equity), tradingDaysPerYear),
		MaxDrawdown:  maxDrawdown(equity),
		SharpeRatio:  sharpeRatio(dailyReturns, tradingDaysPerYear),
		WinRate:      fifoWinRate(trades),
		TradeCount:   len(trades),
	}
}

// annualReturn compounds the total growth over the simulated trading
// days. Zero trading days or non-positive capital yields 0.
func annualReturn(initialCapital, finalValue float64, tradingDays, tradingDaysPerYear int) float64 {
	if tradingDays == 0 || initialCapital <= 0 || finalValue <= 0 {
		return 0
	}

	return math.Pow(finalValue/initialCapital, float64(tradingDaysPerYear)/float64(tradingDays)) - 1
}

// maxDrawdown returns the deepest peak-to-trough decline as a
// non-positive fraction; 0 for a monotonically non-decreasing curve.
func maxDrawdown(equity []types.EquityPoint) float64 {
	worst := 0.0
	runningMax := math.Inf(-1)

	for _, point := range equity {
		if point.Value > runningMax {
			runningMax = point.Value
		}

		if runningMax <= 0 {
			continue
		}

		drawdown := (point.Value - runningMax) / runningMax
		if drawdown < worst {
			worst = drawdown
		}
	}

	return worst
}

// sharpeRatio annualizes mean daily return over its sample standard
// deviation; 0 when the deviation is 0.
func sharpeRatio(dailyReturns []float64, tradingDaysPerYear int) float64 {
	if len(dailyReturns) < 2 {
		return 0
	}

	mean := 0.0
	for _, r := range dailyReturns {
		mean += r
	}

	mean /= float64(len(dailyReturns))

	variance := 0.0
	for _, r := range dailyReturns {
		diff := r - mean
		variance += diff * diff
	}

	variance /= float64(len(dailyReturns) - 1)

	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		return 0
	}

	return mean / stdDev * math.Sqrt(float64(tradingDaysPerYear))
}

// fifoLot is one unmatched buy slice awaiting FIFO pairing.
type fifoLot struct {
	quantity float64
	price    float64
}

// fifoWinRate pairs buys and sells per symbol with an explicit FIFO lot
// queue: every buy pushes a lot, every sell consumes lots front to back,
// splitting a lot when it is only partially consumed. Each consumed slice
// is one round trip, winning when the sell price exceeds that lot's buy
// price. Fewer than one full round trip yields 0.
func fifoWinRate(trades []types.Trade) float64 {
	const eps = 1e-9

	lots := make(map[string][]fifoLot)
	rounds := 0
	wins := 0

	for _, trade := range trades {
		switch trade.Action {
		case types.TradeActionBuy:
			lots[trade.Symbol] = append(lots[trade.Symbol], fifoLot{quantity: trade.Quantity, price: trade.Price})
		case types.TradeActionSell:
			remaining := trade.Quantity
			queue := lots[trade.Symbol]

			for remaining > eps && len(queue) > 0 {
				lot := &queue[0]
				matched := math.Min(remaining, lot.quantity)

				rounds++
				if trade.Price > lot.price {
					wins++
				}

				remaining -= matched
				lot.quantity -= matched

				if lot.quantity <= eps {
					queue = queue[1:]
				}
			}

			lots[trade.Symbol] = queue
		}
	}

	if rounds == 0 {
		return 0
	}

	return float64(wins) / float64(rounds)
}
