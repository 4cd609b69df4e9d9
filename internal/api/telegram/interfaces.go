package telegram

import (
	"context"

	"github.com/futig/docqa-bot/internal/pkg/ratelimit"
)

type Answerer interface {
	Answer(ctx context.Context, query, indexPath string) string
}

type MessageSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendTyping(chatID int64) error
}

type RateLimiter interface {
	Allow(key string) ratelimit.Decision
}
