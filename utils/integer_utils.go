package utils

import (
	"math/big"
)

// GetIntegerConstraints takes a given signed indicator and bit length for a prospective integer and determines the
// minimum/maximum value boundaries.
// Returns the minimum and maximum value for the provided integer properties. Minimums and maximums are inclusive.
func GetIntegerConstraints(signed bool, bitLength int) (*big.Int, *big.Int) {
	var min, max *big.Int
	if signed {
		// Set max as 2^(bitLen - 1) - 1
		max = big.NewInt(2)
		max.Exp(max, big.NewInt(int64(bitLength-1)), nil)
		max.Sub(max, big.NewInt(1))

		// Set min as -(2^(bitLen - 1))
		min = big.NewInt(0).Mul(max, big.NewInt(-1))
		min.Sub(min, big.NewInt(1))
	} else {
		// Set max as 2^bitLen - 1
		max = big.NewInt(2)
		max.Exp(max, big.NewInt(int64(bitLength)), nil)
		max.Sub(max, big.NewInt(1))

		min = big.NewInt(0)
	}
	return min, max
}

// IsIntegerInBounds reports whether b can be represented by an integer of the given signedness and bit length.
func IsIntegerInBounds(b *big.Int, signed bool, bitLength int) bool {
	min, max := GetIntegerConstraints(signed, bitLength)
	return b.Cmp(min) >= 0 && b.Cmp(max) <= 0
}
