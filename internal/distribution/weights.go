package distribution

import (
	"math"

	"liquidityBook/internal/model"
)

// Shape constants. These are tuned product heuristics, not AMM invariants.
const (
	// SpotSlope is how fast the spot weight tapers with distance.
	SpotSlope = 3.0
	// SpotFloor is the weight kept by far spot bins.
	SpotFloor = 0.1

	// CurveSharpness scales the Gaussian term exp(-(CurveSharpness*d)^2).
	CurveSharpness = 4.0
	// CurveDecay scales the extra exponential tail exp(-CurveDecay*d).
	CurveDecay = 2.5

	// BidAskPeakX and BidAskPeakY are the bump positions across the range
	// (0 = lower edge, 1 = upper edge) on the X and Y side.
	BidAskPeakX = 0.85
	BidAskPeakY = 0.15
	// BidAskWidth is the bump width in normalised distance.
	BidAskWidth = 0.25
)

type side int

const (
	sideActive side = iota
	sideX
	sideY
)

// shaper returns the unscaled weight for a normalised distance d in [0,1].
type shaper func(d float64, s side) float64

func shaperFor(strategy model.Strategy) shaper {
	switch strategy {
	case model.StrategyCurve:
		return curveShape
	case model.StrategyBidAsk:
		return bidAskShape
	default:
		return spotShape
	}
}

func spotShape(d float64, _ side) float64 {
	return math.Max(SpotFloor, 1-SpotSlope*d)
}

func curveShape(d float64, _ side) float64 {
	g := CurveSharpness * d
	return math.Exp(-g*g) * math.Exp(-CurveDecay*d)
}

func bidAskShape(d float64, s side) float64 {
	peak := bidAskPeakDistance(BidAskPeakX)
	if s == sideY {
		peak = bidAskPeakDistance(BidAskPeakY)
	}
	z := (d - peak) / BidAskWidth
	return math.Exp(-z * z)
}

// bidAskPeakDistance converts a position across the range into a distance
// from the centre, normalised to the half range.
func bidAskPeakDistance(position float64) float64 {
	return math.Abs(position-0.5) * 2
}

// amountScale grows with the amount but stays finite for large inputs.
func amountScale(amount float64) float64 {
	if amount <= 0 {
		return 0
	}
	return math.Log1p(amount)
}

// activeScale is the multiplier of the active bin, which can hold both tokens.
// For bid-ask the smaller side is used so the centre stays the minimum.
func activeScale(strategy model.Strategy, x, y float64) float64 {
	if strategy != model.StrategyBidAsk {
		return amountScale(x + y)
	}
	sx, sy := amountScale(x), amountScale(y)
	switch {
	case sx == 0:
		return sy
	case sy == 0:
		return sx
	default:
		return math.Min(sx, sy)
	}
}
