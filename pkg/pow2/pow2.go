// Package pow2 provides power-of-two rounding helpers used to size
// mask-indexed ring buffers.
//
// Both functions work by bit smearing: propagating the highest set bit
// into every lower position, which turns any value into a run of ones
// that is one less than a power of two.
package pow2

// RoundUp returns the smallest power of two greater than or equal to v.
//
// RoundUp(0) returns 0, and values above 1<<63 wrap to 0; callers that
// size buffers must reject those results.
func RoundUp(v uint64) uint64 {
	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	v++
	return v
}

// RoundDown returns the largest power of two less than or equal to v,
// or 0 when v is 0.
func RoundDown(v uint64) uint64 {
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v |= v >> 32
	// v is now all ones below its highest set bit; keep only that bit.
	return v - v>>1
}

// IsPowerOfTwo reports whether v is a power of two. Zero is not.
func IsPowerOfTwo(v uint64) bool {
	return v != 0 && v&(v-1) == 0
}
