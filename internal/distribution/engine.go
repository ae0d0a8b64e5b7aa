package distribution

import (
	"math"

	"liquidityBook/internal/binmath"
	"liquidityBook/internal/model"
)

// Compute returns one weight per bin of the selected range. Bins below the
// active bin need a Y amount, bins above need an X amount, the active bin needs
// either; ineligible bins carry weight 0. Weights are scaled so the heaviest
// bin is 1. Both amounts zero yields an empty slice.
//
// Bin prices follow the range's reference price and bin step, so a range
// mapped with overrides prices its bins on the same axis as its bounds. A
// zero reference or step falls back to the snapshot.
func Compute(strategy model.Strategy, amounts model.Amounts, rng model.RangeResult, snap *model.Snapshot) []model.WeightedBin {
	x, y := sanitize(amounts.X), sanitize(amounts.Y)
	if x == 0 && y == 0 || snap == nil || rng.UpperBinID < rng.LowerBinID {
		return []model.WeightedBin{}
	}
	step := rng.BinStep
	if step <= 0 {
		step = snap.BinStep()
	}
	mult, err := binmath.StepMultiplier(step)
	if err != nil {
		return []model.WeightedBin{}
	}
	ref := rng.ReferencePrice
	if !(ref > 0) || math.IsInf(ref, 0) {
		ref = snap.ActivePrice()
	}

	activeID := snap.ActiveID()
	shape := shaperFor(strategy)
	spanX := float64(rng.UpperBinID - activeID)
	spanY := float64(activeID - rng.LowerBinID)
	sx, sy := amountScale(x), amountScale(y)
	sActive := activeScale(strategy, x, y)

	out := make([]model.WeightedBin, 0, rng.UpperBinID-rng.LowerBinID+1)
	var peak float64
	for id := rng.LowerBinID; id <= rng.UpperBinID; id++ {
		var w float64
		switch {
		case id == activeID:
			w = sActive * shape(0, sideActive)
		case id > activeID && sx > 0:
			w = sx * shape(float64(id-activeID)/spanX, sideX)
		case id < activeID && sy > 0:
			w = sy * shape(float64(activeID-id)/spanY, sideY)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			w = 0
		}
		if w > peak {
			peak = w
		}
		out = append(out, model.WeightedBin{
			BinID:  id,
			Price:  ref * math.Pow(mult, float64(id-activeID)),
			Weight: w,
		})
	}

	if peak > 0 {
		for i := range out {
			out[i].Weight /= peak
		}
	}
	return out
}

// Allocate splits the amounts over weighted bins: X over the active bin and
// bins above it, Y over the active bin and bins below it, proportionally to
// weight. Tokens with no eligible bin in the range stay unallocated.
func Allocate(weights []model.WeightedBin, amounts model.Amounts, activeID int64) []model.BinAllocation {
	x, y := sanitize(amounts.X), sanitize(amounts.Y)

	var sumX, sumY float64
	for _, wb := range weights {
		if wb.BinID >= activeID {
			sumX += wb.Weight
		}
		if wb.BinID <= activeID {
			sumY += wb.Weight
		}
	}

	out := make([]model.BinAllocation, 0, len(weights))
	for _, wb := range weights {
		alloc := model.BinAllocation{BinID: wb.BinID, Price: wb.Price, Weight: wb.Weight}
		if wb.BinID >= activeID && sumX > 0 {
			alloc.AmountX = x * wb.Weight / sumX
		}
		if wb.BinID <= activeID && sumY > 0 {
			alloc.AmountY = y * wb.Weight / sumY
		}
		out = append(out, alloc)
	}
	return out
}

// Summary describes an allocation for logging and display.
type Summary struct {
	Bins       int
	FundedBins int
	TotalX     float64
	TotalY     float64
	PeakBinID  int64
	PeakWeight float64
}

// Summarize aggregates an allocation.
func Summarize(allocs []model.BinAllocation) Summary {
	s := Summary{Bins: len(allocs)}
	for _, a := range allocs {
		if a.AmountX > 0 || a.AmountY > 0 {
			s.FundedBins++
		}
		s.TotalX += a.AmountX
		s.TotalY += a.AmountY
		if a.Weight > s.PeakWeight {
			s.PeakWeight = a.Weight
			s.PeakBinID = a.BinID
		}
	}
	return s
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
