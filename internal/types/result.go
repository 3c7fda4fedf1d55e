package types

import "time"

// EquityPoint is one entry of the equity curve: total portfolio value at
// the close of one simulated bar.
type EquityPoint struct {
	Date  time.Time
	Value float64
}

// MarshalYAML serializes the point as an ordered (ISO date, value) pair.
func (p EquityPoint) MarshalYAML() (any, error) {
	return []any{p.Date.Format("2006-01-02"), p.Value}, nil
}

// BacktestResult is the immutable outcome of one backtest run.
type BacktestResult struct {
	StrategyName   string        `yaml:"strategy_name" json:"strategy_name"`
	Symbol         string        `yaml:"symbol" json:"symbol"`
	StartDate      time.Time     `yaml:"start_date" json:"start_date"`
	EndDate        time.Time     `yaml:"end_date" json:"end_date"`
	InitialCapital float64       `yaml:"initial_capital" json:"initial_capital"`
	FinalValue     float64       `yaml:"final_value" json:"final_value"`
	TotalReturn    float64       `yaml:"total_return" json:"total_return"`
	AnnualReturn   float64       `yaml:"annual_return" json:"annual_return"`
	MaxDrawdown    float64       `yaml:"max_drawdown" json:"max_drawdown"`
	SharpeRatio    float64       `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	TradeCount     int           `yaml:"trade_count" json:"trade_count"`
	WinRate        float64       `yaml:"win_rate" json:"win_rate"`
	EquityCurve    []EquityPoint `yaml:"equity_curve" json:"equity_curve"`
	Trades         []Trade       `yaml:"trades" json:"trades"`
	FinalPositions []Position    `yaml:"final_positions" json:"final_positions"`
}
