package retrieval

import (
	"math"
	"sort"
)

// bm25Index is the sparse lexical sub-ranker. It is built once over the
// unit text collection and never mutated afterwards.
type bm25Index struct {
	k1 float64
	b  float64

	termFreqs []map[string]int
	docLens   []float64
	avgDocLen float64
	docFreq   map[string]int
}

func newBM25Index(texts []string, k1, b float64) *bm25Index {
	idx := &bm25Index{
		k1:        k1,
		b:         b,
		termFreqs: make([]map[string]int, len(texts)),
		docLens:   make([]float64, len(texts)),
		docFreq:   make(map[string]int),
	}

	var totalLen float64
	for i, text := range texts {
		tokens := tokenizeAlphaNum(text)
		tf := make(map[string]int, len(tokens))
		for _, token := range tokens {
			tf[token]++
		}
		for token := range tf {
			idx.docFreq[token]++
		}
		idx.termFreqs[i] = tf
		idx.docLens[i] = float64(len(tokens))
		totalLen += float64(len(tokens))
	}
	if len(texts) > 0 {
		idx.avgDocLen = totalLen / float64(len(texts))
	}
	return idx
}

// topK returns the indices of the k highest-scoring documents for the
// query, best first. Ties resolve to the lower document index so repeated
// queries always rank identically. Zero-score documents are not returned.
func (idx *bm25Index) topK(query string, k int) []int {
	if k <= 0 || len(idx.termFreqs) == 0 {
		return nil
	}

	queryTokens := tokenizeAlphaNum(query)
	scores := make([]float64, len(idx.termFreqs))
	n := float64(len(idx.termFreqs))

	for _, token := range queryTokens {
		df, ok := idx.docFreq[token]
		if !ok {
			continue
		}
		idf := math.Log(1.0 + (n-float64(df)+0.5)/(float64(df)+0.5))
		for docID, tf := range idx.termFreqs {
			freq := float64(tf[token])
			if freq == 0 {
				continue
			}
			norm := 1.0 - idx.b + idx.b*idx.docLens[docID]/idx.avgDocLen
			scores[docID] += idf * freq * (idx.k1 + 1.0) / (freq + idx.k1*norm)
		}
	}

	candidates := make([]int, 0, len(scores))
	for docID, score := range scores {
		if score > 0 {
			candidates = append(candidates, docID)
		}
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
