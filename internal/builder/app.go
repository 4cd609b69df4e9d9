package builder

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/futig/docqa-bot/internal/pkg/ratelimit"
	"go.uber.org/zap"
)

// App represents the application with all its components
type App struct {
	server    *http.Server
	limiter   *ratelimit.Limiter
	registrar *WebhookRegistrar
	logger    *zap.Logger
}

// Run starts the application and all its daemons
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go a.limiter.Run(ctx)

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	if a.registrar != nil {
		go func() {
			if err := a.registrar.Run(ctx); err != nil {
				a.logger.Error("Webhook registration failed", zap.Error(err))
			}
		}()
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		return err
	case sig := <-sigChan:
		a.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
	}

	cancel()
	return a.shutdown()
}

// shutdown gracefully shuts down the application
func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
		return err
	}

	a.logger.Info("Application stopped gracefully")
	_ = a.logger.Sync()
	return nil
}
