package chunking

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/docmentor/docmentor/internal/core/domain"
)

type fakeImageSummarizer struct {
	summary string
	err     error
}

func (f *fakeImageSummarizer) SummarizeImage(context.Context, []byte) (string, error) {
	return f.summary, f.err
}

type fakeTableSummarizer struct {
	summary string
	err     error
}

func (f *fakeTableSummarizer) SummarizeTable(context.Context, string) (string, error) {
	return f.summary, f.err
}

type fakeImageOpener struct {
	err error
}

func (f *fakeImageOpener) OpenImage(_ context.Context, ref string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(ref), nil
}

func newEnhancedChunker(imgErr, tblErr, openErr error) *Chunker {
	return New(
		&fakeImageSummarizer{summary: "an image", err: imgErr},
		&fakeTableSummarizer{summary: "X", err: tblErr},
		&fakeImageOpener{err: openErr},
		nil,
	)
}

func narrative(text string, page int) domain.LayoutElement {
	return domain.LayoutElement{Kind: domain.KindNarrativeText, Text: text, PageNumber: page}
}

func title(text string, page int) domain.LayoutElement {
	return domain.LayoutElement{Kind: domain.KindTitle, Text: text, PageNumber: page}
}

func TestChunkGroupsBySections(t *testing.T) {
	elements := []domain.LayoutElement{
		title("Intro", 1),
		narrative("Hello world.", 1),
		title("Section 2", 2),
		narrative("More text.", 2),
	}

	units, err := New(nil, nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", false)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Content != "Intro\n\nHello world." {
		t.Fatalf("unexpected first unit content: %q", units[0].Content)
	}
	if units[1].Content != "Section 2\n\nMore text." {
		t.Fatalf("unexpected second unit content: %q", units[1].Content)
	}
}

func TestChunkMetadataComesFromFlushTrigger(t *testing.T) {
	elements := []domain.LayoutElement{
		title("Intro", 1),
		narrative("Body on page one.", 1),
		title("Next", 3),
	}

	units, err := New(nil, nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", false)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	// The title on page 3 triggered the flush, so its metadata wins.
	if units[0].Metadata.PageNumber != 3 || units[0].Metadata.ElementID != 2 {
		t.Fatalf("unexpected metadata: %+v", units[0].Metadata)
	}
	if units[0].Metadata.Source != "doc.pdf" {
		t.Fatalf("unexpected source: %q", units[0].Metadata.Source)
	}
}

func TestChunkWithoutTitlesEmitsSingleUntitledUnit(t *testing.T) {
	elements := []domain.LayoutElement{
		narrative("First line.", 1),
		{Kind: domain.KindListItem, Text: "Second line.", PageNumber: 1},
		{Kind: domain.KindPlainText, Text: "Third line.", PageNumber: 2},
	}

	units, err := New(nil, nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", false)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Content != "\n\nFirst line.\nSecond line.\nThird line." {
		t.Fatalf("unexpected content: %q", units[0].Content)
	}
}

func TestChunkEmptyElementsYieldsEmptyResult(t *testing.T) {
	units, err := New(nil, nil, nil, nil).Chunk(context.Background(), nil, "doc.pdf", false)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 0 {
		t.Fatalf("expected no units, got %d", len(units))
	}
}

func TestChunkIsIdempotent(t *testing.T) {
	elements := []domain.LayoutElement{
		title("A", 1),
		narrative("one", 1),
		{Kind: domain.KindTable, TableHTML: "<table></table>", PageNumber: 1},
		title("B", 2),
		narrative("two", 2),
	}
	chunker := newEnhancedChunker(nil, nil, nil)

	first, err := chunker.Chunk(context.Background(), elements, "doc.pdf", true)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	second, err := chunker.Chunk(context.Background(), elements, "doc.pdf", true)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-chunking diverged:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestChunkSkipsImagesAndTablesWithoutEnhanced(t *testing.T) {
	elements := []domain.LayoutElement{
		title("A", 1),
		narrative("text before", 1),
		{Kind: domain.KindImage, ImageRef: "img-1", PageNumber: 1},
		{Kind: domain.KindTable, TableHTML: "<table></table>", PageNumber: 1},
		narrative("text after", 1),
	}

	units, err := New(nil, nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", false)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	// Skipped media must not flush: both narrative lines stay in one unit.
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Content != "A\n\ntext before\ntext after" {
		t.Fatalf("unexpected content: %q", units[0].Content)
	}
}

func TestChunkEnhancedTableSummary(t *testing.T) {
	elements := []domain.LayoutElement{
		title("Budget", 2),
		{Kind: domain.KindTable, TableHTML: "<table><tr><td>1</td></tr></table>", PageNumber: 2},
	}

	units, err := newEnhancedChunker(nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", true)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Content != "[Table under 'Budget']\nSummary: X" {
		t.Fatalf("unexpected content: %q", units[0].Content)
	}
}

func TestChunkEnhancedMediaFlushesPendingText(t *testing.T) {
	elements := []domain.LayoutElement{
		title("Charts", 1),
		narrative("intro text", 1),
		{Kind: domain.KindImage, ImageRef: "img-1", PageNumber: 4},
	}

	units, err := newEnhancedChunker(nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", true)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if units[0].Content != "Charts\n\nintro text" {
		t.Fatalf("unexpected flushed content: %q", units[0].Content)
	}
	// The image on page 4 triggered the flush of the page-1 text.
	if units[0].Metadata.PageNumber != 4 {
		t.Fatalf("unexpected flushed metadata: %+v", units[0].Metadata)
	}
	if units[1].Content != "[Image under 'Charts']\nSummary: an image" {
		t.Fatalf("unexpected image unit content: %q", units[1].Content)
	}
}

func TestChunkSummarizerFailureDegradesUnit(t *testing.T) {
	elements := []domain.LayoutElement{
		title("Figures", 1),
		{Kind: domain.KindImage, ImageRef: "img-1", PageNumber: 1},
		{Kind: domain.KindTable, TableHTML: "<table></table>", PageNumber: 1},
	}

	chunker := newEnhancedChunker(errors.New("vision down"), errors.New("llm down"), nil)
	units, err := chunker.Chunk(context.Background(), elements, "doc.pdf", true)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 degraded units, got %d", len(units))
	}
	if units[0].Content != "[Image under 'Figures']" {
		t.Fatalf("unexpected image fallback: %q", units[0].Content)
	}
	if units[1].Content != "[Table under 'Figures']" {
		t.Fatalf("unexpected table fallback: %q", units[1].Content)
	}
}

func TestChunkImageOpenFailureDegradesUnit(t *testing.T) {
	elements := []domain.LayoutElement{
		{Kind: domain.KindImage, ImageRef: "missing", PageNumber: 1},
	}

	chunker := newEnhancedChunker(nil, nil, errors.New("no such file"))
	units, err := chunker.Chunk(context.Background(), elements, "doc.pdf", true)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 1 || units[0].Content != "[Image under '']" {
		t.Fatalf("unexpected units: %+v", units)
	}
}

func TestChunkEnhancedWithoutSummarizersFailsFast(t *testing.T) {
	elements := []domain.LayoutElement{narrative("text", 1)}

	_, err := New(nil, nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", true)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestChunkTableWithoutHTMLFlushesOnly(t *testing.T) {
	elements := []domain.LayoutElement{
		title("Data", 1),
		narrative("before", 1),
		{Kind: domain.KindTable, PageNumber: 1},
	}

	units, err := newEnhancedChunker(nil, nil, nil).Chunk(context.Background(), elements, "doc.pdf", true)
	if err != nil {
		t.Fatalf("Chunk() error = %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("expected 1 unit, got %d", len(units))
	}
	if units[0].Content != "Data\n\nbefore" {
		t.Fatalf("unexpected content: %q", units[0].Content)
	}
}
