package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/docqa-bot/internal/builder"
	"github.com/futig/docqa-bot/internal/entity"
	"go.uber.org/zap"
)

func main() {
	job, err := builder.BuildIngest()
	if err != nil {
		log.Fatal("Failed to build ingestion:", err)
	}
	logger := job.Logger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := job.Run(ctx)
	if err != nil {
		logger.Error("ingestion failed",
			zap.String("kind", string(entity.KindOf(err))),
			zap.Error(err),
		)
		logger.Sync()
		os.Exit(1)
	}

	if report.Skipped {
		logger.Info("index already exists, nothing to do", zap.String("index_path", report.IndexPath))
		return
	}

	logger.Info("index saved",
		zap.String("index_path", report.IndexPath),
		zap.Int("documents", report.Documents),
		zap.Int("pages", report.Pages),
		zap.Int("chunks", report.Chunks),
		zap.Int("dimension", report.Dimension),
		zap.Duration("duration", report.Duration),
	)
}
