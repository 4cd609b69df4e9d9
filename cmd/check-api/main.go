package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/futig/docqa-bot/internal/builder"
	"go.uber.org/zap"
)

func main() {
	check, err := builder.BuildCredentialCheck()
	if err != nil {
		log.Fatal("Failed to build API check:", err)
	}
	logger := check.Logger()
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	reply, err := check.Run(ctx)
	if err != nil {
		logger.Error("model API check failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	fmt.Println(reply)
}
