package ports

import (
	"context"
	"io"

	"github.com/docmentor/docmentor/internal/core/domain"
)

// DocumentIngestor is the inbound contract for document upload orchestration.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, enhanced bool, body io.Reader) (*domain.Document, error)
}

// DocumentReader is the inbound read model for document metadata/state.
type DocumentReader interface {
	GetByID(ctx context.Context, id string) (*domain.Document, error)
}

// DocumentProcessor is the inbound contract for asynchronous document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// ChatService is the inbound contract for conversational Q&A against the
// active document.
type ChatService interface {
	Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error)
}
