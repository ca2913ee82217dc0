package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/ai-faqbot/internal/domain/retrieval"
	"github.com/yanqian/ai-faqbot/internal/infra/config"
	"github.com/yanqian/ai-faqbot/internal/infra/telegram"
)

// App encapsulates startup (corpus load + embed) and the HTTP server lifecycle.
type App struct {
	cfg          *config.Config
	logger       *slog.Logger
	server       *http.Server
	retrievalSvc retrieval.Service
	tg           *telegram.Client
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, retrievalSvc retrieval.Service, tg *telegram.Client) *App {
	return &App{
		cfg:          cfg,
		logger:       logger.With("component", "bootstrap"),
		server:       server,
		retrievalSvc: retrievalSvc,
		tg:           tg,
	}
}

// Run initializes the retrieval index and serves until shutdown. An index
// initialization failure is fatal: the service never starts degraded.
func (a *App) Run(ctx context.Context) error {
	initCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()
	if err := a.retrievalSvc.Initialize(initCtx); err != nil {
		return err
	}

	if a.tg != nil && a.cfg.Telegram.PublicURL != "" {
		webhookCtx, cancelWebhook := context.WithTimeout(ctx, 10*time.Second)
		if err := a.tg.SetWebhook(webhookCtx, a.cfg.Telegram.PublicURL, a.cfg.Telegram.SecretToken); err != nil {
			a.logger.Warn("telegram webhook registration failed", "error", err)
		} else {
			a.logger.Info("telegram webhook registered", "url", a.cfg.Telegram.PublicURL)
		}
		cancelWebhook()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		a.logger.Info("shutdown signal received")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
