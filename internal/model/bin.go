package model

// Bin is one discrete price slot of a Liquidity Book pair.
type Bin struct {
	ID           int64   `json:"id" yaml:"id"`
	Price        float64 `json:"price" yaml:"price"`
	ReserveX     float64 `json:"reserve_x" yaml:"reserve_x"`
	ReserveY     float64 `json:"reserve_y" yaml:"reserve_y"`
	LiquidityUSD float64 `json:"liquidity_usd" yaml:"liquidity_usd"`
}
