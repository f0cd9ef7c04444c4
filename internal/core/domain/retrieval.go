package domain

// UnitMetadata identifies where a retrieval unit came from.
type UnitMetadata struct {
	Source     string `json:"source"`
	PageNumber int    `json:"page_number"`
	// ElementID is the sequence index of the element that triggered the
	// unit flush in the original element stream.
	ElementID int `json:"element_id"`
}

// RetrievalUnit is the atomic chunk of document content indexed and
// returned by retrieval. Immutable after chunking.
type RetrievalUnit struct {
	Content  string       `json:"content"`
	Metadata UnitMetadata `json:"metadata"`
}

// RankedUnit is a retrieval unit with its fused relevance score.
type RankedUnit struct {
	Unit  RetrievalUnit `json:"unit"`
	Score float64       `json:"score"`
}

// Answer is the generated response plus the retrieval units it was
// grounded on.
type Answer struct {
	Text    string       `json:"text"`
	Sources []RankedUnit `json:"sources"`
}
