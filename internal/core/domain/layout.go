package domain

// ElementKind is the closed set of layout region types produced by the
// layout-extraction collaborators.
type ElementKind string

const (
	KindTitle         ElementKind = "title"
	KindHeader        ElementKind = "header"
	KindNarrativeText ElementKind = "narrative_text"
	KindListItem      ElementKind = "list_item"
	KindPlainText     ElementKind = "plain_text"
	KindImage         ElementKind = "image"
	KindTable         ElementKind = "table"
)

// LayoutElement is one detected region of a source document, in reading
// order. PageNumber is 1 when the extractor cannot determine it.
type LayoutElement struct {
	Kind       ElementKind
	Text       string
	PageNumber int
	// TableHTML is set only for KindTable.
	TableHTML string
	// ImageRef is an opaque handle to raw image bytes, set only for KindImage.
	ImageRef string
}

// IsSectionBreak reports whether the element starts a new document section.
func (e LayoutElement) IsSectionBreak() bool {
	return e.Kind == KindTitle || e.Kind == KindHeader
}

// Page returns the element page number, defaulting to 1 when unknown.
func (e LayoutElement) Page() int {
	if e.PageNumber <= 0 {
		return 1
	}
	return e.PageNumber
}
