package mathx

import "math/bits"

// NextPow2 returns the smallest power of two >= x. x == 0 yields 1.
func NextPow2(x uint64) uint64 {
	if x <= 1 {
		return 1
	}
	return 1 << bits.Len64(x-1)
}
