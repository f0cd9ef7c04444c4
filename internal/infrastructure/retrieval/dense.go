package retrieval

import (
	"math"
	"sort"
)

// denseIndex is the semantic sub-ranker: cosine similarity over unit
// embeddings computed by the external embedder at build time.
type denseIndex struct {
	vectors [][]float32
}

func newDenseIndex(vectors [][]float32) *denseIndex {
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		normalized[i] = normalize(v)
	}
	return &denseIndex{vectors: normalized}
}

// topK returns the indices of the k most similar documents, best first.
// Ties resolve to the lower document index.
func (idx *denseIndex) topK(queryVector []float32, k int) []int {
	if k <= 0 || len(idx.vectors) == 0 {
		return nil
	}
	query := normalize(queryVector)

	scores := make([]float64, len(idx.vectors))
	candidates := make([]int, len(idx.vectors))
	for i, v := range idx.vectors {
		scores[i] = dot(query, v)
		candidates[i] = i
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if scores[candidates[i]] != scores[candidates[j]] {
			return scores[candidates[i]] > scores[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}

func dot(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	inv := 1.0 / math.Sqrt(sum)
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) * inv)
	}
	return out
}
