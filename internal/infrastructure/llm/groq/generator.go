// Package groq generates grounded answers and standalone question
// rewrites through the Groq chat completion API.
package groq

import (
	"context"
	"fmt"
	"strings"

	"github.com/docmentor/docmentor/internal/core/domain"
	"github.com/docmentor/docmentor/internal/infrastructure/llm/openaicompat"
)

type Generator struct {
	client *openaicompat.Client
	model  string
}

func NewGenerator(client *openaicompat.Client, model string) *Generator {
	return &Generator{client: client, model: model}
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, sources []domain.RankedUnit) (string, error) {
	messages := []openaicompat.ChatMessage{
		{Role: "system", Content: fmt.Sprintf(answerSystemPrompt, formatContext(sources))},
		{Role: "user", Content: question},
	}
	answer, err := g.client.ChatCompletion(ctx, g.model, messages, 0)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "generate answer", err)
	}
	return answer, nil
}

// RephraseQuestion folds the recent conversation into the question so
// retrieval sees a self-contained query. With no history the question
// is returned unchanged.
func (g *Generator) RephraseQuestion(ctx context.Context, question string, history []domain.ConversationMessage) (string, error) {
	if len(history) == 0 {
		return question, nil
	}

	messages := make([]openaicompat.ChatMessage, 0, len(history)+2)
	messages = append(messages, openaicompat.ChatMessage{Role: "system", Content: rephraseSystemPrompt})
	for _, msg := range history {
		messages = append(messages, openaicompat.ChatMessage{Role: string(msg.Role), Content: msg.Content})
	}
	messages = append(messages, openaicompat.ChatMessage{Role: "user", Content: question})

	rephrased, err := g.client.ChatCompletion(ctx, g.model, messages, 0)
	if err != nil {
		return "", domain.WrapError(domain.ErrTemporary, "rephrase question", err)
	}
	if strings.TrimSpace(rephrased) == "" {
		return question, nil
	}
	return rephrased, nil
}

func formatContext(sources []domain.RankedUnit) string {
	if len(sources) == 0 {
		return "(no relevant excerpts found)"
	}
	var b strings.Builder
	for i, src := range sources {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] (source: %s, page %d)\n%s",
			i+1, src.Unit.Metadata.Source, src.Unit.Metadata.PageNumber, src.Unit.Content)
	}
	return b.String()
}
