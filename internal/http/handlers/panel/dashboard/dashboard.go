// Package dashboard отдаёт показатели панели, посчитанные по снимку сессии.
package dashboard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/dashboard"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Service — контроллер синхронизации сессии.
type Service interface {
	Snapshot() *models.Snapshot
}

// Handler обрабатывает запрос показателей.
type Handler struct {
	log *slog.Logger
	now func() time.Time
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
		now: time.Now,
	}
}

// ServeHTTP godoc
// @Summary Показатели панели
// @Tags Panel
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=dashboard.Stats}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Router /dashboard [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.panel.dashboard"

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

	render.JSON(w, r, response.StatusOKWithData(dashboard.Compute(svc.Snapshot(), h.now())))
}
