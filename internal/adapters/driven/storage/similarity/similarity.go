// Package similarity scores and ranks embedding vectors for the stores.
package similarity

import (
	"math"
	"sort"
)

// CosineDistance returns 1 - cosine similarity of a and b, in [0, 2].
// A zero vector has no direction and is maximally distant (1) from everything.
// The vectors must have equal length.
func CosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 1
	}

	d := 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
	// Clamp rounding noise so identical vectors score exactly 0.
	if d < 1e-9 {
		return 0
	}
	return d
}

// Rank returns the indices of the k smallest distances in ascending order.
// Equal distances keep their original order. k <= 0 or k > len returns all.
func Rank(distances []float64, k int) []int {
	idx := make([]int, len(distances))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return distances[idx[i]] < distances[idx[j]]
	})
	if k > 0 && k < len(idx) {
		idx = idx[:k]
	}
	return idx
}
