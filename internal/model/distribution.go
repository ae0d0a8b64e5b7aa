package model

// Amounts are the token X and token Y amounts a user wants to add.
type Amounts struct {
	X float64 `json:"amount_x"`
	Y float64 `json:"amount_y"`
}

// WeightedBin is the distribution weight of one bin, in [0,1].
type WeightedBin struct {
	BinID  int64   `json:"bin_id"`
	Price  float64 `json:"price"`
	Weight float64 `json:"weight"`
}

// BinAllocation is the share of each token landing in one bin.
type BinAllocation struct {
	BinID   int64   `json:"bin_id"`
	Price   float64 `json:"price"`
	Weight  float64 `json:"weight"`
	AmountX float64 `json:"amount_x"`
	AmountY float64 `json:"amount_y"`
}

// DistributionRecord is one JSONL line of a distribution plan.
type DistributionRecord struct {
	Pool        string  `json:"pool"`
	Strategy    string  `json:"strategy"`
	ActiveID    int64   `json:"active_id"`
	BinID       int64   `json:"bin_id"`
	Price       float64 `json:"price"`
	Weight      float64 `json:"weight"`
	AmountX     float64 `json:"amount_x"`
	AmountY     float64 `json:"amount_y"`
	GeneratedAt string  `json:"generated_at"`
}
