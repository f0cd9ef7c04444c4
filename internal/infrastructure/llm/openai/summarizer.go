package openai

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/docmentor/docmentor/internal/infrastructure/llm/openaicompat"
)

const (
	imagePrompt = "Describe the image in detail. Be specific about any text, data, or charts visible."

	tablePromptFormat = "Summarize the following table:\n\n%s\n\nProvide a concise summary that captures the key information."

	summaryMaxTokens = 2048
)

// Summarizer generates indexable descriptions of images and tables for
// enhanced document processing.
type Summarizer struct {
	client      *openaicompat.Client
	visionModel string
	tableModel  string
}

func NewSummarizer(client *openaicompat.Client, visionModel, tableModel string) *Summarizer {
	return &Summarizer{
		client:      client,
		visionModel: visionModel,
		tableModel:  tableModel,
	}
}

// Ready reports whether summarization credentials are configured.
func (s *Summarizer) Ready() bool {
	return s.client.HasCredentials()
}

func (s *Summarizer) SummarizeImage(ctx context.Context, image []byte) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	messages := []openaicompat.ChatMessage{
		{
			Role: "user",
			Content: []openaicompat.ContentPart{
				openaicompat.TextPart(imagePrompt),
				openaicompat.ImagePart(dataURL),
			},
		},
	}
	return s.client.ChatCompletion(ctx, s.visionModel, messages, summaryMaxTokens)
}

func (s *Summarizer) SummarizeTable(ctx context.Context, tableHTML string) (string, error) {
	messages := []openaicompat.ChatMessage{
		{
			Role:    "user",
			Content: fmt.Sprintf(tablePromptFormat, tableHTML),
		},
	}
	return s.client.ChatCompletion(ctx, s.tableModel, messages, 0)
}
