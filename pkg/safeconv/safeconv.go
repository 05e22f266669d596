// Package safeconv provides integer conversions and arithmetic that either
// saturate or panic instead of silently wrapping.
package safeconv

import (
	"math"
	"math/bits"
)

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = math.MaxInt

// ClampInt64ToInt converts v to int, clamping to the int range.
func ClampInt64ToInt(v int64) int {
	if v > int64(MaxInt) {
		return MaxInt
	}

	if v < int64(math.MinInt) {
		return math.MinInt
	}

	return int(v)
}

// ClampUint64ToInt64 converts v to int64, clamping at math.MaxInt64.
func ClampUint64ToInt64(v uint64) int64 {
	if v > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(v)
}

// SaturatingMul returns a*b for non-negative operands, or MaxInt when the
// product overflows. It panics on negative operands.
func SaturatingMul(a, b int) int {
	if a < 0 || b < 0 {
		panic("safeconv: negative operand to SaturatingMul")
	}

	if a == 0 || b == 0 {
		return 0
	}

	if a > MaxInt/b {
		return MaxInt
	}

	return a * b
}

// SaturatingShl returns v<<n for non-negative operands, or MaxInt when the
// shift overflows. It panics on negative operands.
func SaturatingShl(v, n int) int {
	if v < 0 || n < 0 {
		panic("safeconv: negative operand to SaturatingShl")
	}

	if v == 0 {
		return 0
	}

	if n >= bits.UintSize-1 || v > MaxInt>>n {
		return MaxInt
	}

	return v << n
}
