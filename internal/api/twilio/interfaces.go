package twilio

import (
	"context"

	"github.com/futig/docqa-bot/internal/pkg/ratelimit"
)

type Answerer interface {
	Answer(ctx context.Context, query, indexPath string) string
}

type WhatsAppSender interface {
	SendWhatsApp(ctx context.Context, to, body string) error
}

type RateLimiter interface {
	Allow(key string) ratelimit.Decision
}
