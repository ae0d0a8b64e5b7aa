package binmath

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const activeID int64 = 8388608

func TestPriceAtNextBin(t *testing.T) {
	price, err := PriceAt(activeID+1, activeID, 1.0, 25)
	require.NoError(t, err)
	assert.InDelta(t, 1.0025, price, 1e-9)

	price, err = PriceAt(activeID-1, activeID, 1.0, 25)
	require.NoError(t, err)
	assert.InDelta(t, 1/1.0025, price, 1e-12)

	price, err = PriceAt(activeID, activeID, 3.5, 25)
	require.NoError(t, err)
	assert.Equal(t, 3.5, price)
}

func TestPriceAtMonotonic(t *testing.T) {
	for _, step := range []int{1, 25, 100, 1000} {
		prev := 0.0
		for k := -200; k <= 200; k++ {
			price, err := PriceAt(activeID+int64(k), activeID, 1, step)
			require.NoError(t, err)
			require.Greater(t, price, prev, "step %d offset %d", step, k)
			prev = price
		}
	}
}

func TestBinIDAtRoundTrip(t *testing.T) {
	for _, p := range []float64{0.0001, 1, 1000} {
		for _, step := range []int{1, 25, 100, 1000} {
			for k := int64(-200); k <= 200; k++ {
				price, err := PriceAt(activeID+k, activeID, p, step)
				require.NoError(t, err)
				id, err := BinIDAt(price, activeID, p, step)
				require.NoError(t, err)
				require.Equal(t, activeID+k, id, "price %v step %d offset %d", p, step, k)
			}
		}
	}
}

func TestBinIDAtRoundsSymmetrically(t *testing.T) {
	mult := 1.0025
	up := math.Pow(mult, 2.5)
	id, err := BinIDAt(up*1.0000001, activeID, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, activeID+3, id)

	down := math.Pow(mult, -2.5)
	id, err = BinIDAt(down/1.0000001, activeID, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, activeID-3, id)
}

func TestConversionErrors(t *testing.T) {
	_, err := PriceAt(activeID, activeID, 1, 0)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = PriceAt(activeID, activeID, 0, 25)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = BinIDAt(-1, activeID, 1, 25)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = BinIDAt(math.NaN(), activeID, 1, 25)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = BinIDAt(1, activeID, math.Inf(1), 25)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = StepMultiplier(-5)
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestClampIsNotAnError(t *testing.T) {
	id, err := BinIDAt(1e12, activeID, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, activeID+DefaultMaxOffset, id)

	id, err = BinIDAt(1e-12, activeID, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, activeID-DefaultMaxOffset, id)

	far, err := PriceAt(activeID+500, activeID, 1, 25)
	require.NoError(t, err)
	edge, err := PriceAt(activeID+DefaultMaxOffset, activeID, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, edge, far)
}

func TestConverterCustomWindow(t *testing.T) {
	conv := NewConverter(10, zap.NewNop())
	id, err := conv.BinIDAt(2, activeID, 1, 25)
	require.NoError(t, err)
	assert.Equal(t, activeID+10, id)

	id, clamped := ClampBinID(activeID-3, activeID, 10)
	assert.False(t, clamped)
	assert.Equal(t, activeID-3, id)
}

func TestOutOfBoundsBinUnwraps(t *testing.T) {
	diag := OutOfBoundsBin{Requested: 500, Clamped: 200, MaxOffset: 200}
	assert.True(t, errors.Is(diag, ErrOutOfBoundsBin))
	assert.Contains(t, diag.Error(), "clamped to 200")
}
