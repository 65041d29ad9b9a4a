// Package remove реализует HTTP-обработчик удаления подписки. Удалить можно только
// подписку из области видимости актора; чужая неотличима от несуществующей.
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
	DeleteSubscription(ctx context.Context, id string) error
}

// Handler обрабатывает удаление подписки.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Удалить подписку
// @Tags Subscriptions
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID подписки"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 500 {object} response.ErrorResponse "Хранилище отклонило удаление"
// @Router /subscriptions/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.remove"

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
	if id == "" {
		log.Error("empty id")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid id"))
		return
	}

	if err := svc.DeleteSubscription(r.Context(), id); err != nil {
		log.Warn("subscription not deleted", slog.String("id", id), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("subscription deleted", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"deleted": id,
	}))
}
