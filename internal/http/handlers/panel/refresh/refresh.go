// Package refresh реализует явное обновление снимка по запросу оператора.
package refresh

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
)

// Service — контроллер синхронизации сессии.
type Service interface {
	Refresh(ctx context.Context, background bool) error
	Status() panel.Status
}

// Handler обрабатывает явное обновление.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Обновить снимок
// @Description Перечитывает данные из хранилища. Ошибка чтения не портит снимок: остаётся последний удачный.
// @Tags Panel
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.panel.refresh"

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

	err := svc.Refresh(r.Context(), false)
	if err != nil {
		log.Warn("refresh failed, keeping last snapshot", sl.Err(err))
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"refreshed": err == nil,
		"sync":      svc.Status(),
	}))
}
