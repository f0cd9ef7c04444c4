package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/core/ports"
)

type ChatUseCase struct {
	conversations ports.ConversationStore
	generator     ports.AnswerGenerator
	active        *ActiveRetriever

	historyLimit int
	topK         int
}

func NewChatUseCase(
	conversations ports.ConversationStore,
	generator ports.AnswerGenerator,
	active *ActiveRetriever,
	historyLimit, topK int,
) *ChatUseCase {
	if historyLimit <= 0 {
		historyLimit = 10
	}
	if topK <= 0 {
		topK = 5
	}
	return &ChatUseCase{
		conversations: conversations,
		generator:     generator,
		active:        active,
		historyLimit:  historyLimit,
		topK:          topK,
	}
}

// Ask answers one question against the active document: rephrase the
// question into a standalone one using recent history, retrieve fused
// candidates, generate a grounded answer, record both turns.
func (uc *ChatUseCase) Ask(ctx context.Context, sessionID, question string) (*domain.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "chat ask", errors.New("empty question"))
	}
	if strings.TrimSpace(sessionID) == "" {
		sessionID = uuid.NewString()
	}

	if _, err := uc.conversations.EnsureConversation(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("ensure conversation: %w", err)
	}

	history, err := uc.conversations.ListRecentMessages(ctx, sessionID, uc.historyLimit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	standalone := question
	if len(history) > 0 {
		standalone, err = uc.generator.RephraseQuestion(ctx, question, history)
		if err != nil {
			return nil, fmt.Errorf("rephrase question: %w", err)
		}
		if strings.TrimSpace(standalone) == "" {
			standalone = question
		}
	}

	retriever, err := uc.active.Handle(ctx)
	if err != nil {
		return nil, err
	}

	sources, err := retriever.Retrieve(ctx, standalone)
	if err != nil {
		return nil, fmt.Errorf("retrieve candidates: %w", err)
	}
	if len(sources) > uc.topK {
		sources = sources[:uc.topK]
	}

	answerText, err := uc.generator.GenerateAnswer(ctx, standalone, sources)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	now := time.Now().UTC()
	if err := uc.appendTurn(ctx, sessionID, domain.RoleUser, question, now); err != nil {
		return nil, err
	}
	if err := uc.appendTurn(ctx, sessionID, domain.RoleAssistant, answerText, now); err != nil {
		return nil, err
	}

	return &domain.Answer{
		Text:    answerText,
		Sources: sources,
	}, nil
}

func (uc *ChatUseCase) appendTurn(ctx context.Context, sessionID string, role domain.MessageRole, content string, at time.Time) error {
	err := uc.conversations.AppendMessage(ctx, domain.ConversationMessage{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: at,
	})
	if err != nil {
		return fmt.Errorf("append %s message: %w", role, err)
	}
	return nil
}
