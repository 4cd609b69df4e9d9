package config

import (
	"strings"
	"testing"
)

func hasWarning(cfg *Config, substr string) bool {
	for _, w := range cfg.Warnings {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

func TestLoadDefaultsToPDFOnly(t *testing.T) {
	t.Setenv("UNIDOC_LICENSE_API_KEY", "")

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatal(err)
	}
	if len(cfg.IngestCfg.Extensions) != 1 || cfg.IngestCfg.Extensions[0] != ".pdf" {
		t.Errorf("extensions = %v", cfg.IngestCfg.Extensions)
	}
	if cfg.DocxEnabled() {
		t.Error("docx enabled by default")
	}
}

func TestLoadWarnsAboutDocxWithoutLicense(t *testing.T) {
	t.Setenv("INGEST_EXTENSIONS", ".pdf,.docx")
	t.Setenv("UNIDOC_LICENSE_API_KEY", "")

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatal(err)
	}
	if !hasWarning(cfg, "UNIDOC_LICENSE_API_KEY") {
		t.Errorf("warnings = %v", cfg.Warnings)
	}
}

func TestTwilioSignatureEnabled(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		enabled bool
	}{
		{
			name:    "token and base url",
			cfg:     Config{PublicBaseURL: "https://bot.example.com", TwilioCfg: TwilioConfig{AuthToken: "t", ValidateSignature: true}},
			enabled: true,
		},
		{
			name: "switched off",
			cfg:  Config{PublicBaseURL: "https://bot.example.com", TwilioCfg: TwilioConfig{AuthToken: "t"}},
		},
		{
			name: "no token",
			cfg:  Config{PublicBaseURL: "https://bot.example.com", TwilioCfg: TwilioConfig{ValidateSignature: true}},
		},
		{
			name: "no base url",
			cfg:  Config{TwilioCfg: TwilioConfig{AuthToken: "t", ValidateSignature: true}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.TwilioSignatureEnabled(); got != tt.enabled {
				t.Errorf("TwilioSignatureEnabled() = %v, want %v", got, tt.enabled)
			}
		})
	}
}

func TestLoadWarnsAboutUnauthenticatedWebhooks(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "")
	t.Setenv("TWILIO_AUTH_TOKEN", "")

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatal(err)
	}
	if !hasWarning(cfg, "TELEGRAM_WEBHOOK_SECRET") {
		t.Errorf("missing telegram secret warning: %v", cfg.Warnings)
	}
	if !hasWarning(cfg, "twilio signature validation is off") {
		t.Errorf("missing twilio signature warning: %v", cfg.Warnings)
	}
}

func TestLoadRejectsInvalidWebhookSecret(t *testing.T) {
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "not allowed!")

	if _, err := Load("unittest"); err == nil || !strings.Contains(err.Error(), "TELEGRAM_WEBHOOK_SECRET") {
		t.Errorf("err = %v", err)
	}
}
