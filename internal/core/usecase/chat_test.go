package usecase

import (
	"context"
	"testing"

	"github.com/docmentor/docmentor/internal/core/domain"
)

func newChatFixture(ranked []domain.RankedUnit) (*ChatUseCase, *fakeConversationStore, *fakeGenerator) {
	repo := newFakeDocumentRepo()
	repo.latest = readyDoc("doc-1")
	units := &fakeUnitStore{replaced: map[string][]domain.RetrievalUnit{
		"doc-1": {{Content: "a"}},
	}}
	builder := &fakeBuilder{retriever: &fakeRetriever{ranked: ranked}}
	active := NewActiveRetriever(repo, units, builder)

	conversations := &fakeConversationStore{}
	generator := &fakeGenerator{answer: "grounded answer"}
	return NewChatUseCase(conversations, generator, active, 10, 2), conversations, generator
}

func rankedUnits(contents ...string) []domain.RankedUnit {
	out := make([]domain.RankedUnit, len(contents))
	for i, c := range contents {
		out[i] = domain.RankedUnit{Unit: domain.RetrievalUnit{Content: c}, Score: 1.0 / float64(i+1)}
	}
	return out
}

func TestAskAnswersAndRecordsTurns(t *testing.T) {
	uc, conversations, generator := newChatFixture(rankedUnits("ctx-1", "ctx-2", "ctx-3"))

	answer, err := uc.Ask(context.Background(), "sess-1", "What is the budget?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if answer.Text != "grounded answer" {
		t.Fatalf("unexpected answer: %q", answer.Text)
	}
	// topK=2 truncates the fused candidate list.
	if len(answer.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(answer.Sources))
	}
	if len(generator.gotSources) != 2 {
		t.Fatalf("generator received %d sources", len(generator.gotSources))
	}
	if len(conversations.messages) != 2 {
		t.Fatalf("expected user+assistant turns recorded, got %d", len(conversations.messages))
	}
	if conversations.messages[0].Role != domain.RoleUser || conversations.messages[1].Role != domain.RoleAssistant {
		t.Fatalf("unexpected turn roles: %+v", conversations.messages)
	}
}

func TestAskRephrasesOnlyWithHistory(t *testing.T) {
	uc, conversations, generator := newChatFixture(rankedUnits("ctx"))

	if _, err := uc.Ask(context.Background(), "sess-1", "first question"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if generator.rephrased != 0 {
		t.Fatalf("expected no rephrase without history")
	}

	conversations.recent = []domain.ConversationMessage{
		{Role: domain.RoleUser, Content: "first question"},
		{Role: domain.RoleAssistant, Content: "grounded answer"},
	}
	generator.standalone = "standalone follow-up"
	if _, err := uc.Ask(context.Background(), "sess-1", "and then?"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if generator.rephrased != 1 {
		t.Fatalf("expected one rephrase call, got %d", generator.rephrased)
	}
	if generator.gotQuestion != "standalone follow-up" {
		t.Fatalf("expected standalone question to drive answer, got %q", generator.gotQuestion)
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	uc, _, _ := newChatFixture(nil)

	_, err := uc.Ask(context.Background(), "sess-1", "   ")
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAskGeneratesSessionIDWhenMissing(t *testing.T) {
	uc, conversations, _ := newChatFixture(rankedUnits("ctx"))

	if _, err := uc.Ask(context.Background(), "", "question"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if len(conversations.messages) == 0 || conversations.messages[0].SessionID == "" {
		t.Fatalf("expected generated session id on messages")
	}
}

func TestAskFailsWithoutReadyDocument(t *testing.T) {
	repo := newFakeDocumentRepo()
	active := NewActiveRetriever(repo, &fakeUnitStore{}, &fakeBuilder{})
	uc := NewChatUseCase(&fakeConversationStore{}, &fakeGenerator{}, active, 10, 5)

	_, err := uc.Ask(context.Background(), "sess-1", "question")
	if !domain.IsKind(err, domain.ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
