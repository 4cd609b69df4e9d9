package api

import (
	"net/http"
	"time"

	"github.com/futig/docqa-bot/internal/api/docs"
	"github.com/futig/docqa-bot/internal/api/middleware"
	telegramapi "github.com/futig/docqa-bot/internal/api/telegram"
	twilioapi "github.com/futig/docqa-bot/internal/api/twilio"
	"github.com/futig/docqa-bot/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const LivenessText = "Document Q&A Bot is Running! 🚀"

// RouterConfig lists the messaging adapters to mount. A nil handler is skipped.
type RouterConfig struct {
	TelegramPath    string
	TelegramHandler *telegramapi.Handler
	WhatsAppPath    string
	WhatsAppHandler *twilioapi.Handler
	RequestTimeout  time.Duration
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(cfg RouterConfig, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 90 * time.Second
	}

	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger, "/", "/health"))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		response.Text(w, http.StatusOK, LivenessText)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, http.StatusOK, response.StatusResponse{Status: "healthy"})
	})

	docs.RegisterRoutes(r)

	if cfg.TelegramHandler != nil {
		telegramapi.RegisterRoutes(r, cfg.TelegramPath, cfg.TelegramHandler)
	}
	if cfg.WhatsAppHandler != nil {
		twilioapi.RegisterRoutes(r, cfg.WhatsAppPath, cfg.WhatsAppHandler)
	}

	return r
}
