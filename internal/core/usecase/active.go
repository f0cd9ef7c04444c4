package usecase

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

// ActiveRetriever manages the retriever for the single active document.
// Rebuilds are copy-on-rebuild: a new document swaps in a freshly built
// retriever while in-flight queries keep the handle they started with.
type ActiveRetriever struct {
	repo    ports.DocumentRepository
	units   ports.UnitStore
	builder ports.RetrieverBuilder

	buildMu sync.Mutex
	current atomic.Pointer[builtRetriever]
}

type builtRetriever struct {
	documentID string
	retriever  ports.Retriever
}

func NewActiveRetriever(
	repo ports.DocumentRepository,
	units ports.UnitStore,
	builder ports.RetrieverBuilder,
) *ActiveRetriever {
	return &ActiveRetriever{
		repo:    repo,
		units:   units,
		builder: builder,
	}
}

// Handle returns the retriever for the latest ready document, building
// it on first use and after every document replacement.
func (a *ActiveRetriever) Handle(ctx context.Context) (ports.Retriever, error) {
	doc, err := a.repo.GetLatestReady(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active document: %w", err)
	}

	if cur := a.current.Load(); cur != nil && cur.documentID == doc.ID {
		return cur.retriever, nil
	}

	a.buildMu.Lock()
	defer a.buildMu.Unlock()
	if cur := a.current.Load(); cur != nil && cur.documentID == doc.ID {
		return cur.retriever, nil
	}

	units, err := a.units.LoadUnits(ctx, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("load retrieval units: %w", err)
	}
	if len(units) == 0 {
		return nil, domain.WrapError(domain.ErrEmptyInput, "load retrieval units", fmt.Errorf("document %s has no units", doc.ID))
	}

	retriever, err := a.builder.Build(ctx, units)
	if err != nil {
		return nil, fmt.Errorf("build retriever: %w", err)
	}

	a.current.Store(&builtRetriever{documentID: doc.ID, retriever: retriever})
	return retriever, nil
}
