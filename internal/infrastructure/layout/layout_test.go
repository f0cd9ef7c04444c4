package layout

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"

	"github.com/docmentor/docmentor/internal/core/domain"
)

type mapStorage struct {
	files map[string]string
}

func (s *mapStorage) Save(context.Context, string, io.Reader) error {
	return errors.New("not implemented")
}

func (s *mapStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	content, ok := s.files[key]
	if !ok {
		return nil, errors.New("missing file: " + key)
	}
	return io.NopCloser(strings.NewReader(content)), nil
}

func TestPlainTextExtractorClassifiesMarkers(t *testing.T) {
	storage := &mapStorage{files: map[string]string{
		"doc.md": "# Annual Report\n\nRevenue grew in every quarter.\n\n## Risks\n\n- supply chain\n- currency exposure\n",
	}}
	extractor := NewPlainTextExtractor(storage)

	elements, err := extractor.Extract(context.Background(), &domain.Document{
		Filename:    "doc.md",
		StoragePath: "doc.md",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	wantKinds := []domain.ElementKind{
		domain.KindTitle,
		domain.KindNarrativeText,
		domain.KindHeader,
		domain.KindListItem,
		domain.KindListItem,
	}
	if len(elements) != len(wantKinds) {
		t.Fatalf("got %d elements, want %d", len(elements), len(wantKinds))
	}
	for i, want := range wantKinds {
		if elements[i].Kind != want {
			t.Errorf("element %d kind = %v, want %v", i, elements[i].Kind, want)
		}
	}
	if elements[0].Text != "Annual Report" {
		t.Errorf("title text = %q", elements[0].Text)
	}
	if elements[3].Text != "supply chain" {
		t.Errorf("list item text = %q", elements[3].Text)
	}
}

func TestPlainTextExtractorOnlyFirstTopHeadingIsTitle(t *testing.T) {
	storage := &mapStorage{files: map[string]string{
		"doc.txt": "# First\n\n# Second\n",
	}}
	extractor := NewPlainTextExtractor(storage)

	elements, err := extractor.Extract(context.Background(), &domain.Document{
		Filename:    "doc.txt",
		StoragePath: "doc.txt",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if elements[0].Kind != domain.KindTitle || elements[1].Kind != domain.KindHeader {
		t.Fatalf("kinds = %v, %v; want title then header", elements[0].Kind, elements[1].Kind)
	}
}

func TestPlainTextExtractorRejectsBinary(t *testing.T) {
	storage := &mapStorage{files: map[string]string{
		"doc.txt": string([]byte{0xff, 0xfe, 0x00, 0x01}),
	}}
	extractor := NewPlainTextExtractor(storage)

	_, err := extractor.Extract(context.Background(), &domain.Document{
		Filename:    "doc.txt",
		StoragePath: "doc.txt",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestSelectorRejectsUnknownFormat(t *testing.T) {
	selector := NewSelector(&mapStorage{files: map[string]string{}})

	_, err := selector.Extract(context.Background(), &domain.Document{
		Filename:    "slides.pptx",
		StoragePath: "slides.pptx",
	})
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestSelectorDispatchesByExtension(t *testing.T) {
	selector := NewSelector(&mapStorage{files: map[string]string{
		"notes.txt": "Just one line.",
	}})

	elements, err := selector.Extract(context.Background(), &domain.Document{
		Filename:    "notes.txt",
		StoragePath: "notes.txt",
	})
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if len(elements) != 1 || elements[0].Kind != domain.KindNarrativeText {
		t.Fatalf("unexpected elements: %+v", elements)
	}
}

func TestAssembleLinesGroupsByBaseline(t *testing.T) {
	texts := []pdf.Text{
		{S: "World", X: 50, Y: 700, FontSize: 11},
		{S: "Hello ", X: 10, Y: 700, FontSize: 11},
		{S: "Below", X: 10, Y: 680, FontSize: 11},
	}

	lines := assembleLines(texts, 3)
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].text != "Hello World" {
		t.Errorf("first line = %q", lines[0].text)
	}
	if lines[1].text != "Below" {
		t.Errorf("second line = %q", lines[1].text)
	}
	if lines[0].page != 3 {
		t.Errorf("page = %d, want 3", lines[0].page)
	}
}

func TestClassifyLinesUsesRelativeFontSize(t *testing.T) {
	lines := []pdfLine{
		{text: "Quarterly Review", fontSize: 18, page: 1},
		{text: "Revenue was stable.", fontSize: 11, page: 1},
		{text: "Outlook", fontSize: 15, page: 2},
		{text: "Growth is expected.", fontSize: 11, page: 2},
	}

	elements := classifyLines(lines)
	wantKinds := []domain.ElementKind{
		domain.KindTitle,
		domain.KindNarrativeText,
		domain.KindHeader,
		domain.KindNarrativeText,
	}
	for i, want := range wantKinds {
		if elements[i].Kind != want {
			t.Errorf("element %d kind = %v, want %v", i, elements[i].Kind, want)
		}
	}
	if elements[2].PageNumber != 2 {
		t.Errorf("header page = %d, want 2", elements[2].PageNumber)
	}
}

func TestRowsToHTMLEscapesCells(t *testing.T) {
	rows := [][]string{
		{"Item", "Qty"},
		{"<bolts>", "5"},
	}

	got := rowsToHTML(rows)
	want := "<table><tr><th>Item</th><th>Qty</th></tr><tr><td>&lt;bolts&gt;</td><td>5</td></tr></table>"
	if got != want {
		t.Fatalf("rowsToHTML() = %q, want %q", got, want)
	}
}

func TestRowsToHTMLEmptySheet(t *testing.T) {
	if got := rowsToHTML([][]string{{"", ""}, {}}); got != "" {
		t.Fatalf("expected empty string, got %q", got)
	}
}
