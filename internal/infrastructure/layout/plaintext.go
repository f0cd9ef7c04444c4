package layout

import (
	"context"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

// PlainTextExtractor reads UTF-8 text and classifies blank-line
// separated blocks. Markdown-style heading and bullet markers are
// honored; everything else is narrative text.
type PlainTextExtractor struct {
	storage ports.ObjectStorage
}

func NewPlainTextExtractor(storage ports.ObjectStorage) *PlainTextExtractor {
	return &PlainTextExtractor{storage: storage}
}

func (e *PlainTextExtractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.LayoutElement, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}
	if !utf8.Valid(raw) {
		return nil, domain.WrapError(domain.ErrInvalidInput, "extract plain text",
			fmt.Errorf("%s is not valid UTF-8", doc.Filename))
	}

	var elements []domain.LayoutElement
	sawTitle := false
	for _, block := range splitBlocks(string(raw)) {
		for _, line := range strings.Split(block, "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			elements = append(elements, classifyTextLine(line, &sawTitle))
		}
	}
	return elements, nil
}

func splitBlocks(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n\n")
}

func classifyTextLine(line string, sawTitle *bool) domain.LayoutElement {
	if heading, level := stripHeadingMarker(line); level > 0 {
		kind := domain.KindHeader
		if level == 1 && !*sawTitle {
			kind = domain.KindTitle
			*sawTitle = true
		}
		return domain.LayoutElement{Kind: kind, Text: heading, PageNumber: 1}
	}
	if item, ok := stripBulletMarker(line); ok {
		return domain.LayoutElement{Kind: domain.KindListItem, Text: item, PageNumber: 1}
	}
	return domain.LayoutElement{Kind: domain.KindNarrativeText, Text: line, PageNumber: 1}
}

func stripHeadingMarker(line string) (string, int) {
	level := 0
	for level < len(line) && line[level] == '#' {
		level++
	}
	if level == 0 || level > 6 {
		return line, 0
	}
	rest := strings.TrimSpace(line[level:])
	if rest == "" {
		return line, 0
	}
	return rest, level
}

func stripBulletMarker(line string) (string, bool) {
	for _, marker := range []string{"- ", "* ", "• "} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	return line, false
}
