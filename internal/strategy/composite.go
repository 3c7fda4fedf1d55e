package strategy

import (
	"strings"

	"github.com/rxtech-lab/equity-backtest/internal/indicator"
	"github.com/rxtech-lab/equity-backtest/internal/types"
	"github.com/rxtech-lab/equity-backtest/pkg/errors"
)

// Condition is one bar-local indicator predicate used by the composite
// strategy. Undefined indicator cells make a condition false, never true.
type Condition interface {
	// Name returns a short label used in signal reasons
	Name() string
	// Holds evaluates the condition at bar i of the series
	Holds(series *indicator.Series, i int) bool
}

// Composite combines conditions with asymmetric semantics: a buy fires
// only when every buy condition holds, while a sell fires when any sell
// condition holds. Exits are deliberately easier to trigger than entries.
type Composite struct {
	allInSizer

	name      string
	buyConds  []Condition
	sellConds []Condition
}

// NewComposite creates a composite strategy. Both condition lists must be
// non-empty: a vacuous conjunction would buy on every bar.
func NewComposite(name string, buyConds, sellConds []Condition) (*Composite, error) {
	if len(buyConds) == 0 {
		return nil, errors.New(errors.ErrCodeNoConditions, "composite strategy requires at least one buy condition")
	}

	if len(sellConds) == 0 {
		return nil, errors.New(errors.ErrCodeNoConditions, "composite strategy requires at least one sell condition")
	}

	return &Composite{
		name:      name,
		buyConds:  buyConds,
		sellConds: sellConds,
	}, nil
}

// Name returns the name of the strategy.
func (s *Composite) Name() string {
	return s.name
}

// GenerateSignals evaluates the sell disjunction before the buy
// conjunction, so a bar satisfying both exits.
func (s *Composite) GenerateSignals(series *indicator.Series) ([]types.Signal, error) {
	signals := make([]types.Signal, series.Len())

	for i := 0; i < series.Len(); i++ {
		signals[i] = holdSignal(s.Name(), series.Bar(i).Date, "")

		if name, ok := s.anySellHolds(series, i); ok {
			signals[i].Type = types.SignalTypeSell
			signals[i].Reason = "sell condition " + name

			continue
		}

		if names, ok := s.allBuysHold(series, i); ok {
			signals[i].Type = types.SignalTypeBuy
			signals[i].Reason = "buy conditions " + names
		}
	}

	return signals, nil
}

func (s *Composite) anySellHolds(series *indicator.Series, i int) (string, bool) {
	for _, cond := range s.sellConds {
		if cond.Holds(series, i) {
			return cond.Name(), true
		}
	}

	return "", false
}

func (s *Composite) allBuysHold(series *indicator.Series, i int) (string, bool) {
	names := make([]string, 0, len(s.buyConds))

	for _, cond := range s.buyConds {
		if !cond.Holds(series, i) {
			return "", false
		}

		names = append(names, cond.Name())
	}

	return strings.Join(names, "+"), true
}

// ConditionFunc adapts a function to the Condition interface.
type ConditionFunc struct {
	Label string
	Fn    func(series *indicator.Series, i int) bool
}

// Name returns the condition label.
func (c ConditionFunc) Name() string {
	return c.Label
}

// Holds evaluates the wrapped function.
func (c ConditionFunc) Holds(series *indicator.Series, i int) bool {
	return c.Fn(series, i)
}

// ColumnBelow holds when the named column is defined and below the
// threshold.
func ColumnBelow(column string, threshold float64) Condition {
	return ConditionFunc{
		Label: column + "_below",
		Fn: func(series *indicator.Series, i int) bool {
			value := series.Value(column, i)

			return value.IsSome() && value.Unwrap() < threshold
		},
	}
}

// ColumnAbove holds when the named column is defined and above the
// threshold.
func ColumnAbove(column string, threshold float64) Condition {
	return ConditionFunc{
		Label: column + "_above",
		Fn: func(series *indicator.Series, i int) bool {
			value := series.Value(column, i)

			return value.IsSome() && value.Unwrap() > threshold
		},
	}
}

// ColumnsOrdered holds when both columns are defined and the first is
// strictly greater than the second.
func ColumnsOrdered(greater, lesser string) Condition {
	return ConditionFunc{
		Label: greater + "_over_" + lesser,
		Fn: func(series *indicator.Series, i int) bool {
			a := series.Value(greater, i)
			b := series.Value(lesser, i)

			return a.IsSome() && b.IsSome() && a.Unwrap() > b.Unwrap()
		},
	}
}

// CloseBelowColumn holds when the column is defined and the bar close is
// below it.
func CloseBelowColumn(column string) Condition {
	return ConditionFunc{
		Label: "close_below_" + column,
		Fn: func(series *indicator.Series, i int) bool {
			value := series.Value(column, i)

			return value.IsSome() && series.Bar(i).Close < value.Unwrap()
		},
	}
}

// CloseAboveColumn holds when the column is defined and the bar close is
// above it.
func CloseAboveColumn(column string) Condition {
	return ConditionFunc{
		Label: "close_above_" + column,
		Fn: func(series *indicator.Series, i int) bool {
			value := series.Value(column, i)

			return value.IsSome() && series.Bar(i).Close > value.Unwrap()
		},
	}
}
