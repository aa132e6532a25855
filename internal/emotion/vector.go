package emotion

import (
	"gonum.org/v1/gonum/floats"
)

// cosineSimilarity returns the cosine of the angle between a and b. ok is
// false when the lengths differ or either vector has zero norm.
func cosineSimilarity(a, b []float64) (sim float64, ok bool) {
	if len(a) != len(b) || len(a) == 0 {
		return 0, false
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, false
	}

	return floats.Dot(a, b) / (normA * normB), true
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
