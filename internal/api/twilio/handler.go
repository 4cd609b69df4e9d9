package twilio

import (
	"errors"
	"net/http"
	"strings"

	"github.com/futig/docqa-bot/internal/entity"
	twiliointegration "github.com/futig/docqa-bot/internal/integration/twilio"
	"github.com/futig/docqa-bot/internal/pkg/logger"
	"github.com/futig/docqa-bot/internal/pkg/ratelimit"
	"github.com/futig/docqa-bot/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxFormBytes = 64 << 10

type Handler struct {
	answerer  Answerer
	sender    WhatsAppSender
	limiter   RateLimiter
	indexPath string

	// signature check, off when authToken is empty
	authToken  string
	webhookURL string
}

type HandlerOption func(*Handler)

// WithSignatureCheck rejects requests whose X-Twilio-Signature does not match
// the public webhookURL Twilio was configured with.
func WithSignatureCheck(authToken, webhookURL string) HandlerOption {
	return func(h *Handler) {
		h.authToken = authToken
		h.webhookURL = webhookURL
	}
}

// NewHandler builds the WhatsApp webhook handler. With a nil sender answers
// are returned inline in the TwiML acknowledgment.
func NewHandler(answerer Answerer, sender WhatsAppSender, limiter RateLimiter, indexPath string, opts ...HandlerOption) *Handler {
	h := &Handler{
		answerer:  answerer,
		sender:    sender,
		limiter:   limiter,
		indexPath: indexPath,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Webhook handles an incoming WhatsApp message. Every request from Twilio is
// acknowledged with 200; unsigned requests are rejected with 403 when the check is on.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "WhatsAppWebhook")

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		ctxzap.Warn(ctx, "failed to parse twilio form", zap.Error(err))
		response.TwiMLMessage(w)
		return
	}

	if h.authToken != "" && !h.signed(r) {
		ctxzap.Warn(ctx, "whatsapp request with invalid signature rejected", zap.String("remote_addr", r.RemoteAddr))
		response.Error(w, http.StatusForbidden, "invalid signature")
		return
	}

	in := entity.TwilioInbound{
		MessageSID: r.PostForm.Get("MessageSid"),
		From:       r.PostForm.Get("From"),
		To:         r.PostForm.Get("To"),
		Body:       strings.TrimSpace(r.PostForm.Get("Body")),
	}

	if in.Body == "" {
		ctxzap.Debug(ctx, "whatsapp message without text skipped", zap.String("message_sid", in.MessageSID))
		response.TwiMLMessage(w)
		return
	}

	ctx = logger.WithSender(ctx, "whatsapp", in.From)

	if d := h.limiter.Allow(in.From); !d.Allowed {
		ctxzap.Warn(ctx, "rate limit exceeded")
		if d.Warn {
			response.TwiMLMessage(w, ratelimit.Notice(d.Warnings))
			return
		}
		response.TwiMLMessage(w)
		return
	}

	ctxzap.Info(ctx, "whatsapp question received",
		zap.String("message_sid", in.MessageSID),
		zap.Int("query_length", len(in.Body)),
	)

	answer := h.answerer.Answer(ctx, in.Body, h.indexPath)

	parts := twiliointegration.SplitBody(answer, twiliointegration.MaxBodyRunes)

	if h.sender != nil && in.From != "" {
		err := h.sender.SendWhatsApp(ctx, in.From, answer)
		if err == nil {
			response.TwiMLMessage(w)
			return
		}

		// parts already delivered are not repeated inline
		var undelivered *twiliointegration.UndeliveredError
		if errors.As(err, &undelivered) {
			parts = undelivered.Parts
		}
		ctxzap.Error(ctx, "failed to deliver whatsapp reply, answering inline",
			zap.Error(err),
			zap.Int("inline_parts", len(parts)),
		)
	}

	response.TwiMLMessage(w, parts...)
}

func (h *Handler) signed(r *http.Request) bool {
	fullURL := h.webhookURL
	if r.URL.RawQuery != "" {
		fullURL += "?" + r.URL.RawQuery
	}
	return twiliointegration.ValidSignature(h.authToken, fullURL, r.PostForm, r.Header.Get(twiliointegration.SignatureHeader))
}
