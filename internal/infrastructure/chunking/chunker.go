package chunking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

// Chunker groups layout elements into retrieval units by section: every
// narrative run is accumulated until the next title/header and flushed as
// one unit prefixed with the section title. In enhanced mode images and
// tables become standalone units carrying a model-generated summary.
type Chunker struct {
	images ports.ImageSummarizer
	tables ports.TableSummarizer
	opener ports.ImageOpener
	logger *slog.Logger
}

func New(images ports.ImageSummarizer, tables ports.TableSummarizer, opener ports.ImageOpener, logger *slog.Logger) *Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Chunker{
		images: images,
		tables: tables,
		opener: opener,
		logger: logger,
	}
}

// Chunk runs a single forward pass over elements. Element order is
// significant and preserved. Summarizer failures degrade the affected
// unit and never abort the pass; the only up-front failure is requesting
// enhanced processing without summarizers wired.
func (c *Chunker) Chunk(ctx context.Context, elements []domain.LayoutElement, sourceID string, enhanced bool) ([]domain.RetrievalUnit, error) {
	if enhanced && (c.images == nil || c.tables == nil || c.opener == nil) {
		return nil, domain.WrapError(
			domain.ErrConfiguration,
			"chunk document",
			errors.New("enhanced processing requires image and table summarizers"),
		)
	}

	units := make([]domain.RetrievalUnit, 0, len(elements))
	currentTitle := ""
	var block strings.Builder

	metadataAt := func(idx int) domain.UnitMetadata {
		return domain.UnitMetadata{
			Source:     sourceID,
			PageNumber: elements[idx].Page(),
			ElementID:  idx,
		}
	}

	// A flushed unit carries the metadata of the element that triggered
	// the flush, not of the elements that produced the text. Downstream
	// page citations depend on this.
	flushBlock := func(idx int) {
		text := strings.TrimSpace(block.String())
		block.Reset()
		if text == "" {
			return
		}
		units = append(units, domain.RetrievalUnit{
			Content:  currentTitle + "\n\n" + text,
			Metadata: metadataAt(idx),
		})
	}

	for i, el := range elements {
		switch el.Kind {
		case domain.KindTitle, domain.KindHeader:
			flushBlock(i)
			currentTitle = el.Text

		case domain.KindNarrativeText, domain.KindListItem, domain.KindPlainText:
			block.WriteString(el.Text)
			block.WriteString("\n")

		case domain.KindImage:
			if !enhanced {
				continue
			}
			flushBlock(i)
			units = append(units, domain.RetrievalUnit{
				Content:  c.imageContent(ctx, el, currentTitle),
				Metadata: metadataAt(i),
			})

		case domain.KindTable:
			if !enhanced {
				continue
			}
			flushBlock(i)
			if el.TableHTML == "" {
				continue
			}
			units = append(units, domain.RetrievalUnit{
				Content:  c.tableContent(ctx, el, currentTitle),
				Metadata: metadataAt(i),
			})
		}
	}

	if len(elements) > 0 {
		flushBlock(len(elements) - 1)
	}

	return units, nil
}

func (c *Chunker) imageContent(ctx context.Context, el domain.LayoutElement, title string) string {
	placeholder := fmt.Sprintf("[Image under '%s']", title)

	image, err := c.opener.OpenImage(ctx, el.ImageRef)
	if err != nil {
		c.logger.Warn("image_summary_fallback", "ref", el.ImageRef, "error", err)
		return placeholder
	}
	summary, err := c.images.SummarizeImage(ctx, image)
	if err != nil {
		c.logger.Warn("image_summary_fallback", "ref", el.ImageRef, "error", err)
		return placeholder
	}
	return placeholder + "\nSummary: " + summary
}

func (c *Chunker) tableContent(ctx context.Context, el domain.LayoutElement, title string) string {
	placeholder := fmt.Sprintf("[Table under '%s']", title)

	summary, err := c.tables.SummarizeTable(ctx, el.TableHTML)
	if err != nil {
		c.logger.Warn("table_summary_fallback", "page", el.Page(), "error", err)
		return placeholder
	}
	return placeholder + "\nSummary: " + summary
}
