// Package renewal составляет письмо с предложением продлить подписку.
// Подписка ищется только в области видимости актора.
package renewal

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/dashboard"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Generator составляет письмо о продлении.
type Generator interface {
	GenerateRenewalEmail(ctx context.Context, sub models.Subscription, offer models.Offer) (string, error)
}

// Service — контроллер синхронизации сессии.
type Service interface {
	Snapshot() *models.Snapshot
}

// Handler обрабатывает запрос письма.
type Handler struct {
	log       *slog.Logger
	assistant Generator
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, assistant Generator) *Handler {
	return &Handler{
		log:       log,
		assistant: assistant,
	}
}

// ServeHTTP godoc
// @Summary Письмо о продлении подписки
// @Tags Assistant
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID подписки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 502 {object} response.ErrorResponse "Ошибка генеративного сервиса"
// @Router /subscriptions/{id}/renewal-email [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assistant.renewal"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	svc, ok := middlewarectx.ControllerFrom[Service](r.Context())
	if !ok {
		log.Error("controller missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.ErrorWithCode(response.CodeUnauthorized, "unauthorized"))
		return
	}
	actor, _ := middlewarectx.ActorFrom(r.Context())

	id := chi.URLParam(r, "id")
	snap := svc.Snapshot()
	sub, found := access.FindSubscription(snap.Subscriptions, actor, id)
	if !found {
		response.Fail(w, r, access.ErrNotFound)
		return
	}
	offer, found := models.OfferIndex(snap.Offers)[sub.OfferID]
	if !found {
		offer = models.Offer{ID: sub.OfferID, Name: dashboard.UnknownOffer}
	}

	email, err := h.assistant.GenerateRenewalEmail(r.Context(), sub, offer)
	if err != nil {
		log.Warn("renewal email generation failed", slog.String("id", id), sl.Err(err))
		response.FailAssistant(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"email": email,
	}))
}
