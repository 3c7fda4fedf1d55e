package portfolio

import "github.com/shopspring/decimal"

// CommissionModel calculates the commission charged for one fill.
type CommissionModel interface {
	// Calculate returns the commission in account currency for a fill of
	// quantity shares at price
	Calculate(quantity, price float64) float64
}

// RateCommission charges a fixed proportion of the traded amount.
type RateCommission struct {
	rate float64
}

// NewRateCommission creates a proportional commission model.
func NewRateCommission(rate float64) *RateCommission {
	return &RateCommission{rate: rate}
}

// Calculate returns quantity * price * rate.
func (c *RateCommission) Calculate(quantity, price float64) float64 {
	fee, _ := decimal.NewFromFloat(quantity).
		Mul(decimal.NewFromFloat(price)).
		Mul(decimal.NewFromFloat(c.rate)).
		Float64()

	return fee
}

// ZeroCommission charges nothing.
type ZeroCommission struct{}

// NewZeroCommission creates a zero commission model.
func NewZeroCommission() *ZeroCommission {
	return &ZeroCommission{}
}

// Calculate returns 0 for any fill.
func (c *ZeroCommission) Calculate(quantity, price float64) float64 {
	return 0
}
