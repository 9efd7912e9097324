// Package safeconv provides integer conversions that panic on overflow and
// additions that clamp at the type maximum instead of wrapping.
package safeconv

import "math"

// MaxInt is the maximum value for int type (platform-dependent).
const MaxInt = int(^uint(0) >> 1)

// MaxUint32 is the maximum value for uint32 type.
const MaxUint32 = uint32(math.MaxUint32)

// MustUintToInt converts uint to int, panics on overflow.
// Use only when overflow is logically impossible.
func MustUintToInt(v uint) int {
	if v > uint(MaxInt) {
		panic("safeconv: uint to int overflow")
	}

	return int(v)
}

// MustIntToUint converts int to uint, panics if negative.
// Use only when negative values are logically impossible.
func MustIntToUint(v int) uint {
	if v < 0 {
		panic("safeconv: negative int to uint conversion")
	}

	return uint(v)
}

// ClampIntToUint32 converts int to uint32, clamping negatives to zero and
// values above MaxUint32 to MaxUint32.
func ClampIntToUint32(v int) uint32 {
	if v <= 0 {
		return 0
	}

	if uint64(v) > uint64(MaxUint32) {
		return MaxUint32
	}

	return uint32(v)
}

// SaturatingAddUint32 returns a+b, or MaxUint32 when the sum would overflow.
func SaturatingAddUint32(a, b uint32) uint32 {
	if a > MaxUint32-b {
		return MaxUint32
	}

	return a + b
}

// SaturatingAddInt returns a+b for non-negative operands, or MaxInt when the
// sum would overflow. Negative operands are treated as zero.
func SaturatingAddInt(a, b int) int {
	a = max(a, 0)
	b = max(b, 0)

	if a > MaxInt-b {
		return MaxInt
	}

	return a + b
}
