package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

type ProcessDocumentUseCase struct {
	repo      ports.DocumentRepository
	extractor ports.LayoutExtractor
	chunker   ports.Chunker
	units     ports.UnitStore
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.LayoutExtractor,
	chunker ports.Chunker,
	units ports.UnitStore,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:      repo,
		extractor: extractor,
		chunker:   chunker,
		units:     units,
	}
}

// ProcessByID runs the chunking pipeline for one uploaded document:
// layout extraction, section-aware chunking, unit persistence. Any
// pipeline failure marks the document failed instead of leaving it stuck
// in processing.
func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	unitCount, err := uc.pipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, err.Error()); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.repo.SetUnitCount(ctx, documentID, unitCount); err != nil {
		return fmt.Errorf("save unit count: %w", err)
	}
	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) pipeline(ctx context.Context, documentID string) (int, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return 0, fmt.Errorf("fetch document by id: %w", err)
	}

	elements, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return 0, fmt.Errorf("extract layout: %w", err)
	}

	units, err := uc.chunker.Chunk(ctx, elements, doc.Filename, doc.Enhanced)
	if err != nil {
		return 0, fmt.Errorf("chunk document: %w", err)
	}
	if len(units) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("no retrievable content"))
	}

	if err := uc.units.ReplaceUnits(ctx, doc.ID, units); err != nil {
		return 0, fmt.Errorf("persist retrieval units: %w", err)
	}
	return len(units), nil
}
