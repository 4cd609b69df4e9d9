package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/futig/docqa-bot/internal/builder"
	"go.uber.org/zap"
)

func main() {
	registrar, err := builder.BuildWebhookRegistrar()
	if err != nil {
		log.Fatal("Failed to build webhook registrar:", err)
	}
	logger := registrar.Logger()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := registrar.Run(ctx); err != nil {
		logger.Error("webhook registration failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("webhooks registered")
}
