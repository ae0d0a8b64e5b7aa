// Package autofill suggests the counter-token amount for a single-sided entry.
package autofill

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"liquidityBook/internal/model"
)

// DisplayPrecision is the number of decimal places of a suggested amount.
const DisplayPrecision int32 = 6

// Counter-value ratios per strategy.
var (
	SpotRatio   = decimal.RequireFromString("0.5")
	CurveRatio  = decimal.RequireFromString("0.8")
	BidAskRatio = decimal.RequireFromString("0.2")
)

// Ratio returns the counter-value ratio of a strategy.
func Ratio(strategy model.Strategy) (decimal.Decimal, bool) {
	switch strategy {
	case model.StrategySpot:
		return SpotRatio, true
	case model.StrategyCurve:
		return CurveRatio, true
	case model.StrategyBidAsk:
		return BidAskRatio, true
	default:
		return decimal.Zero, false
	}
}

// CounterAmount converts amount into the other token at activePrice (Y per X)
// and scales it by the strategy ratio. It returns ("", false) when there is
// nothing to suggest: a blank, non-numeric or non-positive amount, a bad
// price, or a result that rounds to zero.
func CounterAmount(amount string, activePrice float64, strategy model.Strategy, direction model.Direction) (string, bool) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return "", false
	}
	if math.IsNaN(activePrice) || math.IsInf(activePrice, 0) || activePrice <= 0 {
		return "", false
	}
	ratio, ok := Ratio(strategy)
	if !ok {
		return "", false
	}
	in, err := decimal.NewFromString(amount)
	if err != nil || !in.IsPositive() {
		return "", false
	}

	price := decimal.NewFromFloat(activePrice)
	var out decimal.Decimal
	switch direction {
	case model.DirectionXToY:
		out = in.Mul(price).Mul(ratio)
	case model.DirectionYToX:
		out = in.DivRound(price, DisplayPrecision+8).Mul(ratio)
	default:
		return "", false
	}

	out = out.Round(DisplayPrecision)
	if !out.IsPositive() {
		return "", false
	}
	return out.String(), true
}
