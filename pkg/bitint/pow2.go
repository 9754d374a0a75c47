// SPDX-License-Identifier: MIT
/*
Package bitint provides the power-of-two helpers used to size analysis
windows. Capture windows are kept at powers of two so they line up with the
buffer sizes audio hosts hand out, and so a window that is slightly off can
be rounded to the next valid size in validation messages.

	NextPowerOfTwo(2000) // 2048
	IsPowerOfTwo(2048)   // true

NextPowerOfTwo subtracts one before taking the bit length so an exact power
of two maps to itself:

	size 8: bits.Len(7) = 3, 1<<3 = 8
	size 9: bits.Len(8) = 4, 1<<4 = 16
*/
package bitint

import "math/bits"

// NextPowerOfTwo returns the smallest power of two >= size. Non-positive
// sizes return 1.
//
//	Input  Output
//	4      4
//	5      8
//	0      1
//	-1     1
func NextPowerOfTwo(size int) int {
	if size <= 0 {
		return 1
	}
	return 1 << bits.Len(uint(size-1))
}

// IsPowerOfTwo reports whether n is a positive power of two. A power of two
// has exactly one bit set, so clearing the lowest set bit with n&(n-1)
// leaves zero.
func IsPowerOfTwo(n int) bool {
	return n > 0 && (n&(n-1)) == 0
}
