package usecase

import (
	"bytes"
	"context"
	"io"
	"sync"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

type fakeDocumentRepo struct {
	mu       sync.Mutex
	docs     map[string]*domain.Document
	statuses []domain.DocumentStatus
	latest   *domain.Document

	createErr error
	latestErr error
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{docs: map[string]*domain.Document{}}
}

func (r *fakeDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *doc
	r.docs[doc.ID] = &copied
	return nil
}

func (r *fakeDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	doc, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	copied := *doc
	return &copied, nil
}

func (r *fakeDocumentRepo) GetLatestReady(_ context.Context) (*domain.Document, error) {
	if r.latestErr != nil {
		return nil, r.latestErr
	}
	if r.latest == nil {
		return nil, domain.ErrDocumentNotFound
	}
	copied := *r.latest
	return &copied, nil
}

func (r *fakeDocumentRepo) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus, errMessage string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
	if doc, ok := r.docs[id]; ok {
		doc.Status = status
		doc.Error = errMessage
	}
	return nil
}

func (r *fakeDocumentRepo) SetUnitCount(_ context.Context, id string, count int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if doc, ok := r.docs[id]; ok {
		doc.UnitCount = count
	}
	return nil
}

type fakeStorage struct {
	saved map[string][]byte
	err   error
}

func (s *fakeStorage) Save(_ context.Context, key string, data io.Reader) error {
	if s.err != nil {
		return s.err
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if s.saved == nil {
		s.saved = map[string][]byte{}
	}
	s.saved[key] = raw
	return nil
}

func (s *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.saved[key])), nil
}

type fakeQueue struct {
	published []string
	err       error
}

func (q *fakeQueue) PublishDocumentUploaded(_ context.Context, documentID string) error {
	if q.err != nil {
		return q.err
	}
	q.published = append(q.published, documentID)
	return nil
}

func (q *fakeQueue) SubscribeDocumentUploaded(context.Context, func(context.Context, string) error) error {
	return nil
}

type fakeExtractor struct {
	elements []domain.LayoutElement
	err      error
}

func (e *fakeExtractor) Extract(context.Context, *domain.Document) ([]domain.LayoutElement, error) {
	return e.elements, e.err
}

type fakeChunker struct {
	units []domain.RetrievalUnit
	err   error

	gotEnhanced bool
	gotSource   string
}

func (c *fakeChunker) Chunk(_ context.Context, _ []domain.LayoutElement, sourceID string, enhanced bool) ([]domain.RetrievalUnit, error) {
	c.gotSource = sourceID
	c.gotEnhanced = enhanced
	return c.units, c.err
}

type fakeUnitStore struct {
	replaced map[string][]domain.RetrievalUnit
	loadErr  error
}

func (s *fakeUnitStore) ReplaceUnits(_ context.Context, documentID string, units []domain.RetrievalUnit) error {
	if s.replaced == nil {
		s.replaced = map[string][]domain.RetrievalUnit{}
	}
	s.replaced[documentID] = units
	return nil
}

func (s *fakeUnitStore) LoadUnits(_ context.Context, documentID string) ([]domain.RetrievalUnit, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	return s.replaced[documentID], nil
}

type fakeRetriever struct {
	ranked []domain.RankedUnit
	err    error
	calls  int
}

func (r *fakeRetriever) Retrieve(context.Context, string) ([]domain.RankedUnit, error) {
	r.calls++
	return r.ranked, r.err
}

type fakeBuilder struct {
	retriever ports.Retriever
	err       error
	builds    int
}

func (b *fakeBuilder) Build(_ context.Context, units []domain.RetrievalUnit) (ports.Retriever, error) {
	b.builds++
	if b.err != nil {
		return nil, b.err
	}
	if b.retriever != nil {
		return b.retriever, nil
	}
	return &fakeRetriever{}, nil
}

type fakeConversationStore struct {
	messages  []domain.ConversationMessage
	recent    []domain.ConversationMessage
	appendErr error
}

func (s *fakeConversationStore) EnsureConversation(_ context.Context, sessionID string) (*domain.Conversation, error) {
	return &domain.Conversation{SessionID: sessionID}, nil
}

func (s *fakeConversationStore) AppendMessage(_ context.Context, message domain.ConversationMessage) error {
	if s.appendErr != nil {
		return s.appendErr
	}
	s.messages = append(s.messages, message)
	return nil
}

func (s *fakeConversationStore) ListRecentMessages(context.Context, string, int) ([]domain.ConversationMessage, error) {
	return s.recent, nil
}

type fakeGenerator struct {
	answer     string
	standalone string
	answerErr  error
	rephrased  int

	gotQuestion string
	gotSources  []domain.RankedUnit
}

func (g *fakeGenerator) GenerateAnswer(_ context.Context, question string, sources []domain.RankedUnit) (string, error) {
	g.gotQuestion = question
	g.gotSources = sources
	return g.answer, g.answerErr
}

func (g *fakeGenerator) RephraseQuestion(_ context.Context, question string, _ []domain.ConversationMessage) (string, error) {
	g.rephrased++
	if g.standalone != "" {
		return g.standalone, nil
	}
	return question, nil
}
