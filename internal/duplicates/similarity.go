package duplicates

import (
	"math"

	"issue-analyzer/internal/textproc"
)

// Cosine returns the cosine similarity of two term vectors over the union of
// their terms, clamped to [0,1]. Either vector having zero magnitude gives 0.
func Cosine(a, b textproc.TermVector) float64 {
	var dot, normA, normB float64

	for term, wa := range a {
		dot += wa * b[term]
		normA += wa * wa
	}
	for _, wb := range b {
		normB += wb * wb
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	switch {
	case math.IsNaN(sim) || sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}
