package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMulDiv(t *testing.T) {
	assert.Equal(t, uint64(50), MulDiv(100, 5, 10))
	assert.Equal(t, uint64(0), MulDiv(0, 5, 10))
	assert.Equal(t, uint64(0), MulDiv(5, 0, 10))

	// Rounds down.
	assert.Equal(t, uint64(33), MulDiv(100, 1, 3))

	// The intermediate product exceeds uint64.
	assert.Equal(t, uint64(math.MaxUint64/2), MulDiv(math.MaxUint64, 1, 2))
}

func TestBps(t *testing.T) {
	assert.Equal(t, uint64(7000), Bps(10_000, 7000))
	assert.Equal(t, uint64(2777), Bps(5555, 5000))
	assert.Equal(t, uint64(0), Bps(100, 0))
	assert.Equal(t, uint64(100), Bps(100, BpsDenominator))
}

func TestQuote(t *testing.T) {
	assert.Equal(t, uint64(1111), Quote(1111, 1_000_000, 1_000_000))
	assert.Equal(t, uint64(2222), Quote(1111, 1_000_000, 2_000_000))
	assert.Equal(t, uint64(0), Quote(1111, 0, 2_000_000))
}

func TestAmountOut(t *testing.T) {
	// No fee: x*y=k exactly. 1000 into (10000, 10000) yields
	// 10000 - 10^8/11000 = 909.
	assert.Equal(t, uint64(909), AmountOut(1000, 10_000, 10_000, 0))

	// A fee strictly reduces the output.
	withFee := AmountOut(1000, 10_000, 10_000, 30)
	assert.Less(t, withFee, uint64(909))
	assert.NotZero(t, withFee)

	assert.Equal(t, uint64(0), AmountOut(0, 10_000, 10_000, 30))
	assert.Equal(t, uint64(0), AmountOut(1000, 0, 10_000, 30))
}

func TestPriceImpactBps(t *testing.T) {
	// Small trade against deep reserves: impact stays below 50 bps.
	small := PriceImpactBps(1000, 1_000_000, 1_000_000, 30)
	assert.Less(t, small, uint64(50))

	// 10% of the reserves moves the price far more than 5%.
	large := PriceImpactBps(100_000, 1_000_000, 1_000_000, 30)
	assert.Greater(t, large, uint64(500))

	// Impact grows with size.
	assert.Greater(t, large, small)
}

func TestSqrt(t *testing.T) {
	assert.Equal(t, uint64(0), Sqrt(0))
	assert.Equal(t, uint64(1), Sqrt(1))
	assert.Equal(t, uint64(4), Sqrt(16))
	assert.Equal(t, uint64(4), Sqrt(24))
	assert.Equal(t, uint64(5), Sqrt(25))
	assert.Equal(t, uint64(1_000_000), Sqrt(1_000_000_000_000))
}

func TestSqrtProduct(t *testing.T) {
	assert.Equal(t, uint64(1_000_000), SqrtProduct(1_000_000, 1_000_000))
	// a*b overflows uint64; the big.Int path still gets it right.
	assert.Equal(t, uint64(math.MaxUint64), SqrtProduct(math.MaxUint64, math.MaxUint64))
	assert.Equal(t, uint64(19_999), SqrtProduct(2666, 150_028))
}

func TestDeviationBps(t *testing.T) {
	assert.Equal(t, uint64(0), DeviationBps(100, 100, 100))
	assert.Equal(t, uint64(1000), DeviationBps(110, 100, 100))
	assert.Equal(t, uint64(1000), DeviationBps(100, 110, 100))
	assert.Equal(t, uint64(0), DeviationBps(5, 10, 0))
}
