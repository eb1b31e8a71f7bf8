package ai

import "math"

// NormalizeVector returns a unit-length copy of v. The squared norm is
// accumulated in float64 to avoid drift on long vectors. A zero vector has no
// direction and comes back as an all-zero copy of the same length.
func NormalizeVector(v []float32) []float32 {
	out := make([]float32, len(v))

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return out
	}

	inv := 1 / math.Sqrt(sum)
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
