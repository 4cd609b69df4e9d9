package builder

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/futig/docqa-bot/internal/entity"
	"go.uber.org/zap"
)

type fakeGenerator struct {
	prompt string
	err    error
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string, _ entity.GenerateOptions) (string, error) {
	f.prompt = prompt
	return "Hello! The API is working correctly.", f.err
}

type staticKey string

func (k staticKey) ModelAPIKey() string { return string(k) }

func TestCredentialCheck(t *testing.T) {
	gen := &fakeGenerator{}
	check := &CredentialCheck{generator: gen, credentials: staticKey("k"), temperature: 0.3, logger: zap.NewNop()}

	reply, err := check.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if gen.prompt != CheckPrompt || !strings.Contains(reply, "working") {
		t.Errorf("prompt %q reply %q", gen.prompt, reply)
	}
}

func TestCredentialCheckWithoutKey(t *testing.T) {
	gen := &fakeGenerator{}
	check := &CredentialCheck{generator: gen, credentials: staticKey(""), logger: zap.NewNop()}

	if _, err := check.Run(context.Background()); !errors.Is(err, entity.ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
	if gen.prompt != "" {
		t.Error("generator called without a key")
	}
}

func TestCredentialCheckProviderFailure(t *testing.T) {
	check := &CredentialCheck{generator: &fakeGenerator{err: errors.New("HTTP 403")}, credentials: staticKey("k"), logger: zap.NewNop()}

	if _, err := check.Run(context.Background()); !errors.Is(err, entity.ErrProvider) {
		t.Fatalf("err = %v, want ErrProvider", err)
	}
}

type fakeTelegram struct{ url string }

func (f *fakeTelegram) SetWebhook(_ context.Context, url string) error {
	f.url = url
	return nil
}

type fakeTwilio struct{ err error }

func (f *fakeTwilio) RegisterWebhook(context.Context, string) error { return f.err }

func TestWebhookRegistrarReportsEveryFailure(t *testing.T) {
	tg := &fakeTelegram{}
	r := &WebhookRegistrar{
		baseURL:     "https://bot.example.com",
		telegram:    tg,
		telegramURL: "https://bot.example.com/telegram/webhook",
		twilio:      &fakeTwilio{err: errors.New("HTTP 404")},
		twilioURL:   "https://bot.example.com/whatsapp",
		logger:      zap.NewNop(),
	}

	err := r.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "twilio") {
		t.Fatalf("err = %v", err)
	}
	if tg.url != "https://bot.example.com/telegram/webhook" {
		t.Errorf("telegram url = %q", tg.url)
	}
}

func TestWebhookRegistrarNeedsBaseURLAndPlatform(t *testing.T) {
	if err := (&WebhookRegistrar{telegram: &fakeTelegram{}, logger: zap.NewNop()}).Run(context.Background()); err == nil {
		t.Error("expected error without PUBLIC_BASE_URL")
	}
	err := (&WebhookRegistrar{baseURL: "https://bot.example.com", logger: zap.NewNop()}).Run(context.Background())
	if !errors.Is(err, errNothingToRegister) {
		t.Errorf("err = %v", err)
	}
}

func TestSetupLoggerRejectsUnknownLevel(t *testing.T) {
	if _, err := setupLogger("loud"); err == nil {
		t.Error("expected error")
	}
	if _, err := setupLogger("debug"); err != nil {
		t.Errorf("setupLogger(debug): %v", err)
	}
}
