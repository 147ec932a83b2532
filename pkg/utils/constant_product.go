package utils

import "math/big"

const BpsDenominator = 10000

// MulDiv computes a*b/d with the intermediate product in big.Int, rounding
// down. d must be non-zero.
func MulDiv(a, b, d uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	prod := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	prod.Quo(prod, new(big.Int).SetUint64(d))
	return prod.Uint64()
}

// Bps takes a basis-point fraction of amount, rounding down.
func Bps(amount, bps uint64) uint64 {
	return MulDiv(amount, bps, BpsDenominator)
}

// Quote converts amountA of one reserve side into the other at the current
// reserve ratio, without fees.
func Quote(amountA, reserveA, reserveB uint64) uint64 {
	if reserveA == 0 {
		return 0
	}
	return MulDiv(amountA, reserveB, reserveA)
}

// AmountOut is the constant-product output for a swap of amountIn, after a
// feeBps trading fee on the input side.
func AmountOut(amountIn, reserveIn, reserveOut, feeBps uint64) uint64 {
	if amountIn == 0 || reserveIn == 0 || reserveOut == 0 {
		return 0
	}
	inWithFee := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), big.NewInt(int64(BpsDenominator-feeBps)))
	numerator := new(big.Int).Mul(inWithFee, new(big.Int).SetUint64(reserveOut))
	denominator := new(big.Int).Mul(new(big.Int).SetUint64(reserveIn), big.NewInt(BpsDenominator))
	denominator.Add(denominator, inWithFee)
	return new(big.Int).Quo(numerator, denominator).Uint64()
}

// PriceImpactBps measures how far the executed price of a swap of amountIn
// falls below the spot price, in basis points of the spot output.
func PriceImpactBps(amountIn, reserveIn, reserveOut, feeBps uint64) uint64 {
	spotOut := Quote(amountIn, reserveIn, reserveOut)
	if spotOut == 0 {
		return 0
	}
	out := AmountOut(amountIn, reserveIn, reserveOut, feeBps)
	if out >= spotOut {
		return 0
	}
	return MulDiv(spotOut-out, BpsDenominator, spotOut)
}

// Sqrt is an integer square root by Newton's method.
func Sqrt(x uint64) uint64 {
	if x == 0 {
		return 0
	}
	z := x
	y := (x + 1) / 2
	for y < z {
		z = y
		y = (y + x/y) / 2
	}
	return z
}

// SqrtProduct is the integer square root of a*b without overflowing the
// intermediate product.
func SqrtProduct(a, b uint64) uint64 {
	prod := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	return new(big.Int).Sqrt(prod).Uint64()
}

// DeviationBps is |a-b| relative to base, in basis points.
func DeviationBps(a, b, base uint64) uint64 {
	if base == 0 {
		return 0
	}
	var diff uint64
	if a > b {
		diff = a - b
	} else {
		diff = b - a
	}
	return MulDiv(diff, BpsDenominator, base)
}
