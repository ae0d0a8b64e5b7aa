package lbpair

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// priceScale is the number of decimal places kept when converting a 128.128
// fixed-point price.
const priceScale = 24

var q128 = decimal.NewFromBigInt(new(big.Int).Lsh(big.NewInt(1), 128), 0)

// PriceFromX128 converts an LBPair 128.128 fixed-point price, expressed in raw
// Y units per raw X unit, into a human price of Y per X.
func PriceFromX128(raw *big.Int, decimalsX, decimalsY uint8) (float64, error) {
	if raw == nil || raw.Sign() <= 0 {
		return 0, fmt.Errorf("invalid fixed-point price: %v", raw)
	}
	p := decimal.NewFromBigInt(raw, 0).
		Shift(int32(decimalsX) - int32(decimalsY)).
		DivRound(q128, priceScale)
	if !p.IsPositive() {
		return 0, fmt.Errorf("fixed-point price %s underflows", raw)
	}
	return p.InexactFloat64(), nil
}

// ScaleAmount converts a raw token amount into token units.
func ScaleAmount(raw *big.Int, decimals uint8) float64 {
	if raw == nil || raw.Sign() == 0 {
		return 0
	}
	return decimal.NewFromBigInt(raw, -int32(decimals)).InexactFloat64()
}

// LiquidityUSD values a bin in USD: reserveX is converted to Y at price and
// the Y total is valued at quoteUSD.
func LiquidityUSD(reserveX, reserveY, price, quoteUSD float64) float64 {
	return (reserveX*price + reserveY) * quoteUSD
}
