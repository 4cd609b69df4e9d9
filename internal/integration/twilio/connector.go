package twilio

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/futig/docqa-bot/internal/config"
	"github.com/futig/docqa-bot/internal/entity"
	"github.com/futig/docqa-bot/internal/integration/common"
	pkgRetry "github.com/futig/docqa-bot/internal/pkg/retry"
	pkghttp "github.com/futig/docqa-bot/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	apiVersion = "/2010-04-01"

	whatsappPrefix = "whatsapp:"

	// WhatsApp bodies longer than this are rejected by the Messages API
	MaxBodyRunes = 1600
)

// Connector talks to the Twilio REST API
type Connector struct {
	config    config.TwilioConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(cfg config.TwilioConfig, logger *zap.Logger) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger, pkghttp.WithBasicAuth(cfg.AccountSID, cfg.AuthToken)),
		config:    cfg,
		logger:    logger,
	}
}

// UndeliveredError lists the parts of a split message that were not sent
type UndeliveredError struct {
	Parts []string
	Err   error
}

func (e *UndeliveredError) Error() string {
	return fmt.Sprintf("%d message part(s) undelivered: %v", len(e.Parts), e.Err)
}

func (e *UndeliveredError) Unwrap() error {
	return e.Err
}

// SendWhatsApp delivers body to a WhatsApp address, splitting it when it exceeds the message limit.
// A failure returns an *UndeliveredError carrying the failed part and the ones after it.
func (c *Connector) SendWhatsApp(ctx context.Context, to, body string) error {
	parts := SplitBody(body, MaxBodyRunes)
	for i, part := range parts {
		if err := c.send(ctx, to, part); err != nil {
			return &UndeliveredError{Parts: parts[i:], Err: err}
		}
	}
	return nil
}

func (c *Connector) send(ctx context.Context, to, body string) error {
	form := url.Values{
		"From": {whatsappAddress(c.config.WhatsAppFrom)},
		"To":   {whatsappAddress(to)},
		"Body": {body},
	}
	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", apiVersion, c.config.AccountSID)

	// a message is created on every accepted POST, so a request Twilio may have seen is never repeated
	var resp entity.TwilioMessageResponse
	err := pkgRetry.Do(ctx, c.config.Retry, pkghttp.IsRetryableCreate, func() error {
		return c.connector.DoFormRequest(ctx, http.MethodPost, endpoint, form, &resp)
	})
	if err != nil {
		return fmt.Errorf("send whatsapp message: %w", err)
	}

	ctxzap.Info(ctx, "whatsapp message queued",
		zap.String("message_sid", resp.SID),
		zap.String("status", resp.Status),
	)
	return nil
}

// RegisterWebhook points the incoming-message URL of the configured phone number at url
func (c *Connector) RegisterWebhook(ctx context.Context, webhookURL string) error {
	if c.config.PhoneNumberSID == "" {
		return fmt.Errorf("register webhook: TWILIO_PHONE_NUMBER_SID is not set")
	}

	form := url.Values{
		"SmsUrl":    {webhookURL},
		"SmsMethod": {http.MethodPost},
	}
	endpoint := fmt.Sprintf("%s/Accounts/%s/IncomingPhoneNumbers/%s.json", apiVersion, c.config.AccountSID, c.config.PhoneNumberSID)

	var resp entity.TwilioPhoneNumberResponse
	err := pkgRetry.Do(ctx, c.config.Retry, pkghttp.IsRetryable, func() error {
		return c.connector.DoFormRequest(ctx, http.MethodPost, endpoint, form, &resp)
	})
	if err != nil {
		return fmt.Errorf("register webhook: %w", err)
	}

	ctxzap.Info(ctx, "twilio webhook registered",
		zap.String("phone_number_sid", resp.SID),
		zap.String("sms_url", resp.SmsURL),
	)
	return nil
}

func whatsappAddress(number string) string {
	if strings.HasPrefix(number, whatsappPrefix) {
		return number
	}
	return whatsappPrefix + number
}

// SplitBody cuts body into parts of at most limit runes, preferring whitespace boundaries
func SplitBody(body string, limit int) []string {
	runes := []rune(body)
	if len(runes) <= limit {
		return []string{body}
	}

	var parts []string
	for len(runes) > limit {
		cut := limit
		// prefer breaking at the last whitespace of the window
		for i := limit - 1; i > limit/2; i-- {
			if runes[i] == ' ' || runes[i] == '\n' {
				cut = i + 1
				break
			}
		}
		parts = append(parts, strings.TrimSpace(string(runes[:cut])))
		runes = runes[cut:]
	}
	if rest := strings.TrimSpace(string(runes)); rest != "" {
		parts = append(parts, rest)
	}
	return parts
}
