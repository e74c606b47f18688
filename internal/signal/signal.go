// Package signal compares a game price with a real price and classifies the
// gap against a dollar threshold.
package signal

import (
	"github.com/shopspring/decimal"

	"pricesignal/internal/provider"
)

// Signal is the trading bias. The empty value means no signal.
type Signal string

const (
	None Signal = ""
	Buy  Signal = "buy"
	Sell Signal = "sell"
)

// Places is the number of decimals kept in Diff and DiffPercent.
const Places = 4

// DefaultThreshold is used when no valid threshold is supplied.
var DefaultThreshold = decimal.NewFromInt(5)

var hundred = decimal.NewFromInt(100)

func (s Signal) MarshalJSON() ([]byte, error) {
	if s == None {
		return []byte("null"), nil
	}
	return []byte(`"` + string(s) + `"`), nil
}

// Outcome is the computed part of an evaluation.
type Outcome struct {
	Diff        provider.Price
	DiffPercent provider.Price
	Signal      Signal
}

// Compute derives diff = market - game, its percentage of game, and the signal.
// Any absent input leaves every output absent. DiffPercent is absent when
// game is zero. The threshold test uses the unrounded diff and is inclusive.
func Compute(game, market provider.Price, threshold decimal.Decimal) Outcome {
	g, okG := game.Value()
	r, okR := market.Value()
	if !okG || !okR {
		return Outcome{}
	}

	diff := r.Sub(g)
	out := Outcome{Diff: provider.Present(diff.Round(Places))}
	if !g.IsZero() {
		out.DiffPercent = provider.Present(diff.Div(g).Mul(hundred).Round(Places))
	}
	out.Signal = Classify(diff, threshold)
	return out
}

// Classify returns Buy when diff >= threshold and Sell when diff <= -threshold,
// None inside the dead zone. With a zero threshold a zero diff is Sell.
func Classify(diff, threshold decimal.Decimal) Signal {
	if diff.Abs().LessThan(threshold) {
		return None
	}
	if diff.Sign() > 0 {
		return Buy
	}
	return Sell
}

// ParseThreshold reads a dollar threshold; empty, unparseable or negative
// input yields def.
func ParseThreshold(raw string, def decimal.Decimal) decimal.Decimal {
	if raw == "" {
		return def
	}
	v, ok := provider.ParseDecimal(raw)
	if !ok || v.IsNegative() {
		return def
	}
	return v
}
