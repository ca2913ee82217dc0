package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
	"github.com/yanqian/ai-faqbot/internal/domain/session"
	"github.com/yanqian/ai-faqbot/internal/domain/transcript"
	"github.com/yanqian/ai-faqbot/internal/infra/config"
	"github.com/yanqian/ai-faqbot/internal/infra/corpus"
	"github.com/yanqian/ai-faqbot/internal/infra/corpusrepo"
	"github.com/yanqian/ai-faqbot/internal/infra/embedding"
	"github.com/yanqian/ai-faqbot/internal/infra/export"
	"github.com/yanqian/ai-faqbot/internal/infra/sessionstore"
	"github.com/yanqian/ai-faqbot/internal/infra/telegram"
	httpiface "github.com/yanqian/ai-faqbot/internal/interface/http"
)

func provideRetrievalConfig(cfg *config.Config) retrieval.Config {
	return retrieval.Config{
		CorpusPath:          cfg.Corpus.Path,
		EmbeddingModel:      cfg.Embedding.Model,
		SimilarityThreshold: cfg.Retrieval.SimilarityThreshold,
		BoostFactor:         cfg.Retrieval.BoostFactor,
		MinQueryTokens:      cfg.Retrieval.MinQueryTokens,
		TooShort:            sentinel(cfg.Retrieval.TooShort),
		NoMatch:             sentinel(cfg.Retrieval.NoMatch),
		Gratitude:           sentinel(cfg.Retrieval.Gratitude),
		GratitudePhrases:    cfg.Retrieval.GratitudePhrases,
	}
}

func sentinel(sc config.SentinelConfig) retrieval.Sentinel {
	return retrieval.Sentinel{Question: sc.Question, Answer: sc.Answer, Category: sc.Category}
}

func provideCorpusLoader(cfg *config.Config) retrieval.CorpusLoader {
	return corpus.NewLoader(corpus.Columns{
		Question: cfg.Corpus.QuestionColumn,
		Answer:   cfg.Corpus.AnswerColumn,
		Category: cfg.Corpus.CategoryColumn,
	}, cfg.Corpus.DefaultCategory)
}

func provideEmbedder(cfg *config.Config, logger *slog.Logger) (retrieval.Embedder, error) {
	if cfg.Embedding.Provider == "deterministic" {
		logger.Info("using deterministic embedder", "dim", cfg.Embedding.DeterministicDim)
		return embedding.NewDeterministicEmbedder(cfg.Embedding.DeterministicDim), nil
	}
	client, err := embedding.NewClient(cfg.Embedding.APIKey, cfg.Embedding.BaseURL)
	if err != nil {
		return nil, err
	}
	return embedding.NewOpenAIEmbedder(client, cfg.Embedding.Model, logger), nil
}

func provideIndexRepository(cfg *config.Config, logger *slog.Logger) retrieval.IndexRepository {
	fallback := corpusrepo.NewMemoryRepository()
	dsn := strings.TrimSpace(cfg.Snapshot.DSN)
	if dsn == "" {
		logger.Info("snapshot postgres dsn not set, corpus will be re-embedded on every start")
		return fallback
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory snapshot repository", "error", err)
		return fallback
	}
	if cfg.Snapshot.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Snapshot.MaxConns
	}
	if cfg.Snapshot.MinConns > 0 {
		poolConfig.MinConns = cfg.Snapshot.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory snapshot repository", "error", err)
		return fallback
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory snapshot repository", "error", err)
		pool.Close()
		return fallback
	}
	logger.Info("postgres snapshot repository enabled")
	return corpusrepo.NewPostgresRepository(pool)
}

func provideSessionStore(cfg *config.Config, logger *slog.Logger) (session.Store, error) {
	if cfg.Sessions.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg)
		if err != nil {
			logger.Error("invalid valkey configuration, falling back to file store", "error", err)
			return sessionstore.NewFileStore(cfg.Sessions.FilePath, logger)
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			logger.Error("failed to create valkey client, falling back to file store", "error", err)
			return sessionstore.NewFileStore(cfg.Sessions.FilePath, logger)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			logger.Error("valkey ping failed, falling back to file store", "error", err)
		} else {
			logger.Info("valkey session store enabled", "addr", cfg.Sessions.Valkey.Addr)
			return sessionstore.NewValkeyStore(client, cfg.Sessions.Valkey.Prefix, logger), nil
		}
	}
	return sessionstore.NewFileStore(cfg.Sessions.FilePath, logger)
}

func buildValkeyOptions(cfg *config.Config) (valkey.ClientOption, error) {
	var (
		opt valkey.ClientOption
		err error
	)
	if strings.Contains(cfg.Sessions.Valkey.Addr, "://") {
		opt, err = valkey.ParseURL(cfg.Sessions.Valkey.Addr)
	} else {
		opt = valkey.ClientOption{InitAddress: []string{cfg.Sessions.Valkey.Addr}}
	}
	if err != nil {
		return valkey.ClientOption{}, err
	}
	return opt, nil
}

func provideCategorySource(svc *session.Service) retrieval.CategorySource {
	return svc
}

func provideUploader(cfg *config.Config, logger *slog.Logger) transcript.Uploader {
	if !cfg.Export.Enabled {
		return nil
	}
	storage, err := export.NewObjectStorage(
		cfg.Export.Endpoint,
		cfg.Export.AccessKey,
		cfg.Export.SecretKey,
		cfg.Export.Bucket,
		cfg.Export.Region,
		logger,
	)
	if err != nil {
		logger.Error("export storage unavailable, transcript upload disabled", "error", err)
		return nil
	}
	return storage
}

func provideTelegramClient(cfg *config.Config, logger *slog.Logger) (*telegram.Client, error) {
	if !cfg.Telegram.Enabled {
		return nil, nil
	}
	client, err := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.BaseURL)
	if err != nil {
		return nil, err
	}
	logger.Info("telegram transport enabled")
	return client, nil
}

func provideTelegramOptions(cfg *config.Config) httpiface.TelegramOptions {
	return httpiface.TelegramOptions{
		SecretToken:    cfg.Telegram.SecretToken,
		WelcomeText:    cfg.Telegram.WelcomeText,
		CategoryPrompt: cfg.Telegram.CategoryPrompt,
		VoiceReply:     cfg.Telegram.VoiceReply,
	}
}
