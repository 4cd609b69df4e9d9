package telegram

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgintegration "github.com/futig/docqa-bot/internal/integration/telegram"
	"github.com/futig/docqa-bot/internal/pkg/logger"
	"github.com/futig/docqa-bot/internal/pkg/ratelimit"
	"github.com/futig/docqa-bot/internal/pkg/response"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	maxUpdateBytes = 1 << 20

	SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

	WelcomeText = "👋 Hi! Ask me anything about the company documents and I will answer from them.\n\n" +
		"For example: How many annual leave days do I get?"
)

type Handler struct {
	answerer  Answerer
	sender    MessageSender
	limiter   RateLimiter
	seen      *cache.Cache
	indexPath string
	logger    *zap.Logger
	secret    string
}

type HandlerOption func(*Handler)

// WithSecretToken requires every update to carry the secret passed to setWebhook.
func WithSecretToken(secret string) HandlerOption {
	return func(h *Handler) {
		h.secret = secret
	}
}

func NewHandler(
	answerer Answerer,
	sender MessageSender,
	limiter RateLimiter,
	indexPath string,
	dedupTTL time.Duration,
	logger *zap.Logger,
	opts ...HandlerOption,
) *Handler {
	h := &Handler{
		answerer:  answerer,
		sender:    sender,
		limiter:   limiter,
		seen:      cache.New(dedupTTL, 2*dedupTTL),
		indexPath: indexPath,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Webhook handles a Telegram update. Telegram retries anything but 2xx,
// so every outcome, including failures, is acknowledged with 200.
// Requests without the configured secret token never reach that point and get 403.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "TelegramWebhook")

	if h.secret != "" && subtle.ConstantTimeCompare([]byte(r.Header.Get(SecretTokenHeader)), []byte(h.secret)) != 1 {
		ctxzap.Warn(ctx, "telegram update with invalid secret token rejected", zap.String("remote_addr", r.RemoteAddr))
		response.Error(w, http.StatusForbidden, "invalid secret token")
		return
	}

	defer response.OK(w)

	var update tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateBytes)).Decode(&update); err != nil {
		ctxzap.Warn(ctx, "failed to decode telegram update", zap.Error(err))
		return
	}

	if err := h.seen.Add(strconv.Itoa(update.UpdateID), struct{}{}, cache.DefaultExpiration); err != nil {
		ctxzap.Info(ctx, "duplicate telegram update skipped", zap.Int("update_id", update.UpdateID))
		return
	}

	msg := update.Message
	if msg == nil || msg.Chat == nil || strings.TrimSpace(msg.Text) == "" {
		ctxzap.Debug(ctx, "telegram update without text skipped", zap.Int("update_id", update.UpdateID))
		return
	}

	chatID := msg.Chat.ID
	ctx = logger.WithSender(ctx, "telegram", strconv.FormatInt(chatID, 10))

	if msg.IsCommand() {
		switch msg.Command() {
		case "start", "help":
			h.reply(ctx, chatID, WelcomeText)
			return
		}
	}

	if d := h.limiter.Allow(strconv.FormatInt(chatID, 10)); !d.Allowed {
		ctxzap.Warn(ctx, "rate limit exceeded", zap.Int64("chat_id", chatID))
		if d.Warn {
			h.reply(ctx, chatID, ratelimit.Notice(d.Warnings))
		}
		return
	}

	ctxzap.Info(ctx, "telegram question received",
		zap.Int64("chat_id", chatID),
		zap.Int("query_length", len(msg.Text)),
	)

	typing := tgintegration.NewTypingNotifier(h.sender, chatID, h.logger)
	typing.Start(ctx)
	answer := h.answerer.Answer(ctx, msg.Text, h.indexPath)
	typing.Stop()

	h.reply(ctx, chatID, answer)
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) {
	if err := h.sender.SendText(ctx, chatID, text); err != nil {
		ctxzap.Error(ctx, "failed to deliver telegram reply", zap.Error(err), zap.Int64("chat_id", chatID))
	}
}
