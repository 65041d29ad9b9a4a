// Package image генерирует иллюстрацию предложения генеративным сервисом и сохраняет
// ссылку на неё в предложении. Сбой генерации не затрагивает данные предложения.
package image

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Generator рисует иллюстрацию предложения.
type Generator interface {
	GenerateOfferImage(ctx context.Context, name, description string) (string, error)
}

// Service — контроллер синхронизации сессии.
type Service interface {
	Snapshot() *models.Snapshot
	SetOfferImage(ctx context.Context, id, imageURL string) (models.Offer, error)
}

// Handler обрабатывает генерацию иллюстрации.
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
// @Summary Сгенерировать иллюстрацию предложения
// @Tags Offers
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID предложения"
// @Success 200 {object} response.Response{data=models.Offer}
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 404 {object} response.ErrorResponse "Предложение не найдено"
// @Failure 502 {object} response.ErrorResponse "Ошибка генеративного сервиса"
// @Router /offers/{id}/image [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.image"

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
	if !access.CanManageOffers(actor) {
		log.Warn("image generation refused", slog.String("account_id", actor.ID))
		response.Fail(w, r, access.ErrForbidden)
		return
	}

	id := chi.URLParam(r, "id")
	var offer models.Offer
	found := false
	for _, o := range svc.Snapshot().Offers {
		if o.ID == id {
			offer, found = o, true
			break
		}
	}
	if !found {
		response.Fail(w, r, access.ErrNotFound)
		return
	}

	img, err := h.assistant.GenerateOfferImage(r.Context(), offer.Name, offer.Description)
	if err != nil {
		log.Warn("image generation failed", slog.String("id", id), sl.Err(err))
		response.FailAssistant(w, r, err)
		return
	}

	saved, err := svc.SetOfferImage(r.Context(), id, img)
	if err != nil {
		log.Warn("image not saved", slog.String("id", id), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("offer image generated", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(saved))
}
