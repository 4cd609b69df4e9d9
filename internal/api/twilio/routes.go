package twilio

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers the WhatsApp webhook route
func RegisterRoutes(r chi.Router, path string, h *Handler) {
	r.Post(path, h.Webhook)
}
