package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

// Config tunes the ensemble. Zero values fall back to defaults; the
// weight pair 0.7/0.3 mirrors the dense-leaning bias the product ships
// with.
type Config struct {
	WeightDense  float64
	WeightSparse float64
	KDense       int
	KSparse      int
	// RRFK is the reciprocal-rank damping constant: a candidate at rank r
	// contributes weight/(RRFK+r+1).
	RRFK   int
	BM25K1 float64
	BM25B  float64
}

func DefaultConfig() Config {
	return Config{
		WeightDense:  0.7,
		WeightSparse: 0.3,
		KDense:       10,
		KSparse:      10,
		RRFK:         60,
		BM25K1:       1.2,
		BM25B:        0.75,
	}
}

func (c Config) normalize() Config {
	out := c
	def := DefaultConfig()

	if out.WeightDense < 0 || out.WeightSparse < 0 || out.WeightDense+out.WeightSparse == 0 {
		out.WeightDense = def.WeightDense
		out.WeightSparse = def.WeightSparse
	}
	if out.KDense <= 0 {
		out.KDense = def.KDense
	}
	if out.KSparse <= 0 {
		out.KSparse = def.KSparse
	}
	if out.RRFK <= 0 {
		out.RRFK = def.RRFK
	}
	if out.BM25K1 <= 0 {
		out.BM25K1 = def.BM25K1
	}
	if out.BM25B < 0 || out.BM25B > 1 {
		out.BM25B = def.BM25B
	}
	return out
}

// Builder constructs one immutable ensemble retriever per document.
// Rebuilding for a new document produces a fresh retriever; readers of
// the old one are never invalidated.
type Builder struct {
	embedder ports.Embedder
	cfg      Config
}

func NewBuilder(embedder ports.Embedder, cfg Config) *Builder {
	return &Builder{embedder: embedder, cfg: cfg.normalize()}
}

func (b *Builder) Build(ctx context.Context, units []domain.RetrievalUnit) (ports.Retriever, error) {
	if len(units) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyInput, "build retriever", errors.New("no retrieval units"))
	}

	texts := make([]string, len(units))
	for i, unit := range units {
		texts[i] = unit.Content
	}

	vectors, err := b.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed units: %w", err)
	}
	if len(vectors) != len(units) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed units",
			fmt.Errorf("vectors/units mismatch: %d/%d", len(vectors), len(units)),
		)
	}

	owned := make([]domain.RetrievalUnit, len(units))
	copy(owned, units)

	return &Ensemble{
		cfg:      b.cfg,
		embedder: b.embedder,
		units:    owned,
		dense:    newDenseIndex(vectors),
		sparse:   newBM25Index(texts, b.cfg.BM25K1, b.cfg.BM25B),
	}, nil
}

// Ensemble fuses a dense semantic ranking and a sparse lexical ranking
// into one ordered candidate list. Immutable after Build; Retrieve is
// safe for concurrent use.
type Ensemble struct {
	cfg      Config
	embedder ports.Embedder
	units    []domain.RetrievalUnit
	dense    *denseIndex
	sparse   *bm25Index
}

func (e *Ensemble) Retrieve(ctx context.Context, question string) ([]domain.RankedUnit, error) {
	queryVector, err := e.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	denseTop := e.dense.topK(queryVector, e.cfg.KDense)
	sparseTop := e.sparse.topK(question, e.cfg.KSparse)

	fused := fuseWeightedRRF(denseTop, sparseTop, e.cfg)
	out := make([]domain.RankedUnit, 0, len(fused))
	for _, c := range fused {
		out = append(out, domain.RankedUnit{Unit: e.units[c.unitIndex], Score: c.score})
	}
	return out, nil
}

type fusedCandidate struct {
	unitIndex int
	score     float64
	denseRank int
	seenOrder int
}

// fuseWeightedRRF merges the two ranked lists by weighted reciprocal
// rank. A candidate absent from a list contributes nothing for that
// list. Ordering is fully deterministic: score, then better dense rank,
// then first-seen order.
func fuseWeightedRRF(denseTop, sparseTop []int, cfg Config) []fusedCandidate {
	const unranked = 1 << 30

	acc := make(map[int]*fusedCandidate, len(denseTop)+len(sparseTop))
	seen := 0
	lookup := func(unitIndex int) *fusedCandidate {
		if c, ok := acc[unitIndex]; ok {
			return c
		}
		c := &fusedCandidate{unitIndex: unitIndex, denseRank: unranked, seenOrder: seen}
		seen++
		acc[unitIndex] = c
		return c
	}

	for rank, unitIndex := range denseTop {
		c := lookup(unitIndex)
		c.denseRank = rank
		c.score += cfg.WeightDense / float64(cfg.RRFK+rank+1)
	}
	for rank, unitIndex := range sparseTop {
		c := lookup(unitIndex)
		c.score += cfg.WeightSparse / float64(cfg.RRFK+rank+1)
	}

	out := make([]fusedCandidate, 0, len(acc))
	for _, c := range acc {
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].score != out[j].score {
			return out[i].score > out[j].score
		}
		if out[i].denseRank != out[j].denseRank {
			return out[i].denseRank < out[j].denseRank
		}
		return out[i].seenOrder < out[j].seenOrder
	})
	return out
}
