package types

import "time"

type SignalType string

const (
	// SignalTypeBuy is a signal that tells the engine to open or add to a position
	SignalTypeBuy SignalType = "buy"
	// SignalTypeSell is a signal that tells the engine to reduce or close a position
	SignalTypeSell SignalType = "sell"
	// SignalTypeHold is a signal that tells the engine to take no action
	SignalTypeHold SignalType = "hold"
)

// Signal is a per-bar trading decision produced by a strategy. Signals are
// computed from the indicator series only, never from open positions.
type Signal struct {
	// Date is the date of the bar the signal belongs to
	Date time.Time
	// Type is the type of the signal
	Type SignalType
	// Name is the name of the strategy that produced the signal
	Name string
	// Reason is a human readable explanation for the signal
	Reason string
	// Symbol is the symbol the signal applies to. The engine stamps it
	// before execution; strategies may leave it empty.
	Symbol string
	// Indicator is the indicator family that triggered the signal
	Indicator IndicatorType
}

// IsActionable reports whether the signal requests a trade.
func (s Signal) IsActionable() bool {
	return s.Type == SignalTypeBuy || s.Type == SignalTypeSell
}
