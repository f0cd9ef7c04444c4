// Package layout turns stored documents into ordered layout elements.
// Each format gets its own extractor; Selector dispatches on the
// document's file extension.
package layout

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

type Selector struct {
	extractors map[string]ports.LayoutExtractor
}

func NewSelector(storage ports.ObjectStorage) *Selector {
	pdf := NewPDFExtractor(storage)
	xlsx := NewXLSXExtractor(storage)
	text := NewPlainTextExtractor(storage)
	return &Selector{
		extractors: map[string]ports.LayoutExtractor{
			".pdf":  pdf,
			".xlsx": xlsx,
			".xlsm": xlsx,
			".txt":  text,
			".md":   text,
		},
	}
}

func (s *Selector) Extract(ctx context.Context, doc *domain.Document) ([]domain.LayoutElement, error) {
	ext := strings.ToLower(filepath.Ext(doc.Filename))
	extractor, ok := s.extractors[ext]
	if !ok {
		return nil, domain.WrapError(domain.ErrInvalidInput, "select extractor",
			fmt.Errorf("unsupported document format %q", ext))
	}
	return extractor.Extract(ctx, doc)
}
