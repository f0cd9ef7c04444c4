package layout

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

// XLSXExtractor renders every sheet as one table element, preceded by
// the sheet name as a section header. The first sheet name doubles as
// the document title.
type XLSXExtractor struct {
	storage ports.ObjectStorage
}

func NewXLSXExtractor(storage ports.ObjectStorage) *XLSXExtractor {
	return &XLSXExtractor{storage: storage}
}

func (e *XLSXExtractor) Extract(ctx context.Context, doc *domain.Document) ([]domain.LayoutElement, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	workbook, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse workbook",
			fmt.Errorf("%s: %w", doc.Filename, err))
	}
	defer workbook.Close()

	var elements []domain.LayoutElement
	for i, sheet := range workbook.GetSheetList() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
		}

		page := i + 1
		kind := domain.KindHeader
		if i == 0 {
			kind = domain.KindTitle
		}
		elements = append(elements, domain.LayoutElement{
			Kind:       kind,
			Text:       sheet,
			PageNumber: page,
		})

		if tableHTML := rowsToHTML(rows); tableHTML != "" {
			elements = append(elements, domain.LayoutElement{
				Kind:       domain.KindTable,
				Text:       fmt.Sprintf("Table: %s", sheet),
				PageNumber: page,
				TableHTML:  tableHTML,
			})
		}
	}
	return elements, nil
}

func rowsToHTML(rows [][]string) string {
	nonEmpty := false
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				nonEmpty = true
			}
		}
	}
	if !nonEmpty {
		return ""
	}

	var b strings.Builder
	b.WriteString("<table>")
	for i, row := range rows {
		tag := "td"
		if i == 0 {
			tag = "th"
		}
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<%s>%s</%s>", tag, html.EscapeString(cell), tag)
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}
