package ports

import (
	"context"
	"io"

	"github.com/docmentor/docmentor/internal/core/domain"
)

// DocumentRepository persists and reads document state.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	GetLatestReady(ctx context.Context) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SetUnitCount(ctx context.Context, id string, count int) error
}

// ObjectStorage stores source documents.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes document processing events.
type MessageQueue interface {
	PublishDocumentUploaded(ctx context.Context, documentID string) error
	SubscribeDocumentUploaded(ctx context.Context, handler func(context.Context, string) error) error
}

// LayoutExtractor turns a stored document into layout elements in
// reading order.
type LayoutExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) ([]domain.LayoutElement, error)
}

// ImageSummarizer describes an image for indexing. Used only in
// enhanced processing mode.
type ImageSummarizer interface {
	SummarizeImage(ctx context.Context, image []byte) (string, error)
}

// TableSummarizer condenses an HTML table for indexing. Used only in
// enhanced processing mode.
type TableSummarizer interface {
	SummarizeTable(ctx context.Context, tableHTML string) (string, error)
}

// ImageOpener resolves an opaque image reference into raw bytes.
type ImageOpener interface {
	OpenImage(ctx context.Context, ref string) ([]byte, error)
}

// Chunker groups layout elements into retrieval units.
type Chunker interface {
	Chunk(ctx context.Context, elements []domain.LayoutElement, sourceID string, enhanced bool) ([]domain.RetrievalUnit, error)
}

// UnitStore persists chunker output between the worker and the api.
type UnitStore interface {
	ReplaceUnits(ctx context.Context, documentID string, units []domain.RetrievalUnit) error
	LoadUnits(ctx context.Context, documentID string) ([]domain.RetrievalUnit, error)
}

// Embedder builds vectors for unit content and query text.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Retriever answers queries against one immutable built index. Safe for
// concurrent use.
type Retriever interface {
	Retrieve(ctx context.Context, question string) ([]domain.RankedUnit, error)
}

// RetrieverBuilder constructs a retriever over a unit set. Build fails
// with domain.ErrEmptyInput when units is empty.
type RetrieverBuilder interface {
	Build(ctx context.Context, units []domain.RetrievalUnit) (Retriever, error)
}

// AnswerGenerator creates the final user-facing answer and rephrases
// follow-up questions into standalone ones.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, sources []domain.RankedUnit) (string, error)
	RephraseQuestion(ctx context.Context, question string, history []domain.ConversationMessage) (string, error)
}

// ConversationStore persists chat sessions and messages.
type ConversationStore interface {
	EnsureConversation(ctx context.Context, sessionID string) (*domain.Conversation, error)
	AppendMessage(ctx context.Context, message domain.ConversationMessage) error
	ListRecentMessages(ctx context.Context, sessionID string, limit int) ([]domain.ConversationMessage, error)
}
