package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const maxUpdateBytes = 1 << 20

// UpdateHandler processes one chat update; the bot implements it
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update tgbotapi.Update)
}

// WebhookHandler receives chat updates pushed by the platform
type WebhookHandler struct {
	secret  string
	updates UpdateHandler
}

func NewWebhookHandler(secret string, updates UpdateHandler) *WebhookHandler {
	return &WebhookHandler{
		secret:  secret,
		updates: updates,
	}
}

// HandleWebhook accepts POST /telegram/webhook/{secret}. Malformed updates are
// acknowledged so the platform does not redeliver them forever.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	secret := chi.URLParam(r, "secret")
	if h.secret == "" || subtle.ConstantTimeCompare([]byte(secret), []byte(h.secret)) != 1 {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}

	var update tgbotapi.Update
	r.Body = http.MaxBytesReader(w, r.Body, maxUpdateBytes)
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.WithError(err).Warn("Discarding malformed update")
		writeSuccess(w, nil)
		return
	}

	h.updates.HandleUpdate(r.Context(), update)
	writeSuccess(w, nil)
}
