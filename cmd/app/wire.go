//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/ai-faqbot/internal/bootstrap"
	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
	"github.com/yanqian/ai-faqbot/internal/domain/session"
	"github.com/yanqian/ai-faqbot/internal/domain/transcript"
	"github.com/yanqian/ai-faqbot/internal/infra/config"
	httpiface "github.com/yanqian/ai-faqbot/internal/interface/http"
	"github.com/yanqian/ai-faqbot/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideRetrievalConfig,
		provideCorpusLoader,
		provideEmbedder,
		provideIndexRepository,
		provideSessionStore,
		provideCategorySource,
		provideUploader,
		provideTelegramClient,
		provideTelegramOptions,
		session.NewService,
		transcript.NewService,
		retrieval.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
