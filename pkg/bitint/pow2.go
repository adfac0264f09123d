/*
Package bitint provides power-of-2 helpers used for FFT frame sizing and
time-signature validation.

All operations are O(1), allocation-free, and safe on the audio thread.
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the next power of 2 >= size. Powers of 2 are
// preserved (the size-1 subtraction keeps 8 -> 8 instead of 8 -> 16);
// non-positive inputs return 1.
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}

	// 64-bit platforms (where int is 64-bit)
	if ^uint(0)>>63 == 0 {
		return int(1 << (bits.Len64(uint64(size - 1))))
	}

	// 32-bit platforms
	return int(1 << (bits.Len32(uint32(size - 1))))
}

// IsPowerOfTwo reports whether n is a positive power of 2. Powers of 2 have
// exactly one bit set, so n & (n-1) clears it to zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
