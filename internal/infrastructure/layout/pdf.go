package layout

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

// PDFExtractor reconstructs text lines from PDF content streams and
// classifies them by relative font size. The largest line on the first
// page becomes the document title; oversized lines elsewhere become
// section headers.
type PDFExtractor struct {
	storage ports.ObjectStorage
}

func NewPDFExtractor(storage ports.ObjectStorage) *PDFExtractor {
	return &PDFExtractor{storage: storage}
}

type pdfLine struct {
	text     string
	fontSize float64
	page     int
}

func (e *PDFExtractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.LayoutElement, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse pdf",
			fmt.Errorf("%s: %w", doc.Filename, err))
	}

	var lines []pdfLine
	for pageNum := 1; pageNum <= pdfReader.NumPage(); pageNum++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		lines = append(lines, assembleLines(page.Content().Text, pageNum)...)
	}
	if len(lines) == 0 {
		return nil, nil
	}

	return classifyLines(lines), nil
}

// assembleLines groups positioned text fragments into visual lines.
// Fragments sharing a Y coordinate (within half a point) belong to the
// same line and are ordered left to right.
func assembleLines(texts []pdf.Text, pageNum int) []pdfLine {
	if len(texts) == 0 {
		return nil
	}

	ordered := make([]pdf.Text, len(texts))
	copy(ordered, texts)
	sort.SliceStable(ordered, func(i, j int) bool {
		if math.Abs(ordered[i].Y-ordered[j].Y) > 0.5 {
			return ordered[i].Y > ordered[j].Y
		}
		return ordered[i].X < ordered[j].X
	})

	var lines []pdfLine
	var current strings.Builder
	currentY := ordered[0].Y
	currentSize := ordered[0].FontSize

	flush := func() {
		text := strings.TrimSpace(current.String())
		if text != "" {
			lines = append(lines, pdfLine{text: text, fontSize: currentSize, page: pageNum})
		}
		current.Reset()
	}

	for _, fragment := range ordered {
		if math.Abs(fragment.Y-currentY) > 0.5 {
			flush()
			currentY = fragment.Y
			currentSize = fragment.FontSize
		}
		current.WriteString(fragment.S)
		if fragment.FontSize > currentSize {
			currentSize = fragment.FontSize
		}
	}
	flush()
	return lines
}

func classifyLines(lines []pdfLine) []domain.LayoutElement {
	body := bodyFontSize(lines)

	elements := make([]domain.LayoutElement, 0, len(lines))
	sawTitle := false
	for _, line := range lines {
		kind := domain.KindNarrativeText
		switch {
		case line.fontSize > body*1.15 && !sawTitle && line.page == 1:
			kind = domain.KindTitle
			sawTitle = true
		case line.fontSize > body*1.15:
			kind = domain.KindHeader
		default:
			if item, ok := stripBulletMarker(line.text); ok {
				elements = append(elements, domain.LayoutElement{
					Kind:       domain.KindListItem,
					Text:       item,
					PageNumber: line.page,
				})
				continue
			}
		}
		elements = append(elements, domain.LayoutElement{
			Kind:       kind,
			Text:       line.text,
			PageNumber: line.page,
		})
	}
	return elements
}

// bodyFontSize picks the most frequent font size as the body size so
// heading detection survives documents with unusual base sizes.
func bodyFontSize(lines []pdfLine) float64 {
	counts := make(map[float64]int)
	for _, line := range lines {
		counts[line.fontSize]++
	}
	body, best := 0.0, 0
	for size, count := range counts {
		if count > best || (count == best && size < body) {
			body, best = size, count
		}
	}
	if body <= 0 {
		return 12
	}
	return body
}
