package helpers

import "golang.org/x/exp/constraints"

func Min[T constraints.Ordered](numbers ...T) T {
	var min T = numbers[0]
	for _, n := range numbers {
		if n < min {
			min = n
		}
	}
	return min
}

func IsPowerOf2[T constraints.Integer](x T) bool {
	return x&(x-1) == 0
}

// NextPowerOf2 rounds up to the nearest power of two, identity if x is
// already one.
func NextPowerOf2(x uint32) uint32 {
	if IsPowerOf2(x) {
		return x
	}

	x |= x >> 1
	x |= x >> 2
	x |= x >> 4
	x |= x >> 8
	x |= x >> 16
	return x + 1
}
