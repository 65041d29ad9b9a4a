// Package logout реализует HTTP-обработчик выхода: сессия очищается в хранилище,
// а контроллер синхронизации сессии закрывается вместе с подпиской на изменения.
package logout

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
)

// Service закрывает сессию.
type Service interface {
	Logout(ctx context.Context, sid string) error
}

// Releaser освобождает контроллер сессии.
type Releaser interface {
	Release(sid string)
}

// Handler обрабатывает выход из панели.
type Handler struct {
	log         *slog.Logger
	sessions    Service
	controllers Releaser
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Service, controllers Releaser) *Handler {
	return &Handler{
		log:         log,
		sessions:    sessions,
		controllers: controllers,
	}
}

// ServeHTTP godoc
// @Summary Выход из панели
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 500 {object} response.ErrorResponse "Сессию не удалось очистить"
// @Router /auth/logout [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	sid := middlewarectx.SessionIDFrom(r.Context())
	if sid == "" {
		log.Error("session id missing in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.ErrorWithCode(response.CodeUnauthorized, "unauthorized"))
		return
	}

	// Контроллер закрывается в любом случае, даже если хранилище сессий не ответило.
	h.controllers.Release(sid)

	if err := h.sessions.Logout(r.Context(), sid); err != nil {
		log.Error("failed to clear session", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("logout success")
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"logged_out": true,
	}))
}
