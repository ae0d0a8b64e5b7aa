package model

// PriceRange is a derived [MinPrice, MaxPrice] interval with MinPrice < MaxPrice.
type PriceRange struct {
	MinPrice float64 `json:"min_price"`
	MaxPrice float64 `json:"max_price"`
}

// PercentageRange expresses a PriceRange relative to the reference price, in percent.
type PercentageRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// RangeResult is the output of mapping a selection onto a snapshot.
type RangeResult struct {
	PriceRange
	BinCount       int     `json:"bin_count"`
	CenterOffset   int64   `json:"center_offset"`
	LowerBinID     int64   `json:"lower_bin_id"`
	UpperBinID     int64   `json:"upper_bin_id"`
	ReferencePrice float64 `json:"reference_price"`
	// BinStep is the step, in basis points, the prices were derived with.
	BinStep         int             `json:"bin_step"`
	PercentageRange PercentageRange `json:"percentage_range"`
	// Clamped is set when the range was shifted or trimmed to fit the engine
	// bin window.
	Clamped bool `json:"clamped,omitempty"`
}

// Contains reports whether the bin id lies inside the selected bins.
func (r RangeResult) Contains(binID int64) bool {
	return binID >= r.LowerBinID && binID <= r.UpperBinID
}
