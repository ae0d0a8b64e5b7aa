package lbpair

import (
	"math"
	"math/big"
	"testing"
)

func TestPriceFromX128(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), 128)
	got, err := PriceFromX128(one, 18, 18)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1 {
		t.Fatalf("price = %v, want 1", got)
	}

	// 20 USDC (6 decimals) per AVAX (18 decimals).
	raw := new(big.Int).Mul(one, big.NewInt(20))
	raw.Quo(raw, new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil))
	got, err = PriceFromX128(raw, 18, 6)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-20) > 1e-9 {
		t.Fatalf("price = %v, want 20", got)
	}

	if _, err := PriceFromX128(nil, 18, 6); err == nil {
		t.Fatalf("expected error for nil price")
	}
	if _, err := PriceFromX128(big.NewInt(0), 18, 6); err == nil {
		t.Fatalf("expected error for zero price")
	}
}

func TestScaleAmount(t *testing.T) {
	raw, _ := new(big.Int).SetString("1500000000000000000", 10)
	if got := ScaleAmount(raw, 18); got != 1.5 {
		t.Fatalf("scaled = %v, want 1.5", got)
	}
	if got := ScaleAmount(big.NewInt(2500000), 6); got != 2.5 {
		t.Fatalf("scaled = %v, want 2.5", got)
	}
	if got := ScaleAmount(nil, 6); got != 0 {
		t.Fatalf("scaled nil = %v", got)
	}
}

func TestLiquidityUSD(t *testing.T) {
	if got := LiquidityUSD(1, 50, 20, 1); got != 70 {
		t.Fatalf("liquidity = %v, want 70", got)
	}
	if got := LiquidityUSD(1, 50, 20, 0); got != 0 {
		t.Fatalf("liquidity without quote = %v, want 0", got)
	}
}
