// Package bootstrap wires configuration, infrastructure and use cases
// for both binaries.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docmentor/docmentor/internal/config"
	"github.com/docmentor/docmentor/internal/core/ports"
	"github.com/docmentor/docmentor/internal/core/usecase"
	"github.com/docmentor/docmentor/internal/infrastructure/chunking"
	"github.com/docmentor/docmentor/internal/infrastructure/layout"
	"github.com/docmentor/docmentor/internal/infrastructure/llm/groq"
	"github.com/docmentor/docmentor/internal/infrastructure/llm/openai"
	"github.com/docmentor/docmentor/internal/infrastructure/llm/openaicompat"
	"github.com/docmentor/docmentor/internal/infrastructure/queue/nats"
	"github.com/docmentor/docmentor/internal/infrastructure/repository/postgres"
	"github.com/docmentor/docmentor/internal/infrastructure/resilience"
	"github.com/docmentor/docmentor/internal/infrastructure/retrieval"
	"github.com/docmentor/docmentor/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Queue ports.MessageQueue
	Docs  ports.DocumentRepository

	IngestUC  ports.DocumentIngestor
	ProcessUC ports.DocumentProcessor
	ChatUC    ports.ChatService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	docs := postgres.NewDocumentRepository(db)
	units := postgres.NewUnitRepository(db)
	conversations := postgres.NewConversationRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultPolicy())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, logger, nats.Options{
		Executor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	openaiClient := openaicompat.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, executor)
	groqClient := openaicompat.New(cfg.GroqBaseURL, cfg.GroqAPIKey, executor)

	embedder := openai.NewEmbedder(openaiClient, cfg.OpenAIEmbedModel)
	generator := groq.NewGenerator(groqClient, cfg.GroqGenModel)

	// Without OpenAI credentials the chunker gets no summarizers, so
	// enhanced processing fails fast instead of mid-document.
	var images ports.ImageSummarizer
	var tables ports.TableSummarizer
	if openaiClient.HasCredentials() {
		summarizer := openai.NewSummarizer(openaiClient, cfg.OpenAIVisionModel, cfg.OpenAIVisionModel)
		images = summarizer
		tables = summarizer
	}
	chunker := chunking.New(images, tables, storage, logger)

	extractor := layout.NewSelector(storage)

	builder := retrieval.NewBuilder(embedder, retrieval.Config{
		WeightDense:  cfg.RetrieverWeightDense,
		WeightSparse: cfg.RetrieverWeightSparse,
		KDense:       cfg.RetrieverKDense,
		KSparse:      cfg.RetrieverKSparse,
		RRFK:         cfg.RetrieverRRFK,
	})
	active := usecase.NewActiveRetriever(docs, units, builder)

	ingestUC := usecase.NewIngestDocumentUseCase(docs, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(docs, extractor, chunker, units)
	chatUC := usecase.NewChatUseCase(conversations, generator, active, cfg.ChatHistoryMessages, cfg.ChatTopK)

	return &App{
		Config: cfg,
		Logger: logger,

		Queue: queue,
		Docs:  docs,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		ChatUC:    chatUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
