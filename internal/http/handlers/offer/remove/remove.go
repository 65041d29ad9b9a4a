// Package remove реализует HTTP-обработчик удаления предложения. Подписки, ссылающиеся
// на удалённое предложение, не трогаются.
package remove

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
)

// Service — контроллер синхронизации сессии.
type Service interface {
	DeleteOffer(ctx context.Context, id string) error
}

// Handler обрабатывает удаление предложения.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Удалить предложение
// @Tags Offers
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID предложения"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 404 {object} response.ErrorResponse "Предложение не найдено"
// @Router /offers/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.remove"

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

	id := chi.URLParam(r, "id")
	if err := svc.DeleteOffer(r.Context(), id); err != nil {
		log.Warn("offer not deleted", slog.String("id", id), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("offer deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": id,
	}))
}
