package mathx

import "golang.org/x/exp/constraints"

// AlignDown rounds v down to a multiple of align (a power of two).
func AlignDown[T constraints.Integer](v, align T) T {
	return v &^ (align - 1)
}

// AlignUp rounds v up to a multiple of align (a power of two).
func AlignUp[T constraints.Integer](v, align T) T {
	return (v + align - 1) &^ (align - 1)
}
