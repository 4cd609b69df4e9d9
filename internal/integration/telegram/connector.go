package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/futig/docqa-bot/internal/config"
	pkgRetry "github.com/futig/docqa-bot/internal/pkg/retry"
	pkghttp "github.com/futig/docqa-bot/pkg/http"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector wraps the Bot API calls the webhook adapter needs
type Connector struct {
	api    *tgbotapi.BotAPI
	cfg    config.TelegramConfig
	logger *zap.Logger
}

// NewConnector prepares a Bot API client without calling getMe, so startup
// does not depend on Telegram being reachable
func NewConnector(cfg config.TelegramConfig, logger *zap.Logger) *Connector {
	api := &tgbotapi.BotAPI{
		Token:  cfg.BotToken,
		Client: pkghttp.NewClient(pkghttp.WithRequestTimeout(cfg.RequestTimeout)),
		Buffer: 100,
	}
	api.SetAPIEndpoint(cfg.APIEndpoint)

	return &Connector{
		api:    api,
		cfg:    cfg,
		logger: logger,
	}
}

// SendText delivers a plain text message, retrying throttling and transient failures
func (c *Connector) SendText(ctx context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)

	err := pkgRetry.Do(ctx, c.cfg.Retry, isRetryable, func() error {
		_, err := c.api.Send(msg)
		return c.redact(err)
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID),
		)
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendTyping shows the "typing" chat action for about five seconds
func (c *Connector) SendTyping(chatID int64) error {
	_, err := c.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return c.redact(err)
}

// SetWebhook points the bot at url. With a webhook secret configured Telegram
// echoes it in the X-Telegram-Bot-Api-Secret-Token header of every update.
func (c *Connector) SetWebhook(ctx context.Context, url string) error {
	params := tgbotapi.Params{"url": url}
	params.AddNonEmpty("secret_token", c.cfg.WebhookSecret)

	err := pkgRetry.Do(ctx, c.cfg.Retry, isRetryable, func() error {
		_, err := c.api.MakeRequest("setWebhook", params)
		return c.redact(err)
	})
	if err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	ctxzap.Info(ctx, "telegram webhook registered",
		zap.String("url", url),
		zap.Bool("secret_token", c.cfg.WebhookSecret != ""),
	)
	return nil
}

// WebhookInfo reports what Telegram currently has registered
func (c *Connector) WebhookInfo() (tgbotapi.WebhookInfo, error) {
	info, err := c.api.GetWebhookInfo()
	return info, c.redact(err)
}

// Me returns the bot account the token belongs to
func (c *Connector) Me() (tgbotapi.User, error) {
	me, err := c.api.GetMe()
	return me, c.redact(err)
}

// tokenError hides the bot token that tgbotapi puts in every request URL
type tokenError struct {
	msg string
	err error
}

func (e *tokenError) Error() string { return e.msg }

func (e *tokenError) Unwrap() error { return e.err }

func (c *Connector) redact(err error) error {
	if err == nil || c.cfg.BotToken == "" || !strings.Contains(err.Error(), c.cfg.BotToken) {
		return err
	}
	return &tokenError{
		msg: strings.ReplaceAll(err.Error(), c.cfg.BotToken, pkghttp.Redacted),
		err: err,
	}
}

func isRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= 500
	}
	// transport failures carry no API error code
	return true
}
