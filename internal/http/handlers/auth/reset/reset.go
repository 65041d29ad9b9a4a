// Package reset реализует сброс локального состояния после непредвиденного сбоя:
// сессия по переданному токену очищается, контроллер закрывается. Ответ всегда успешный,
// чтобы клиент мог вернуться к экрану входа даже с испорченным токеном.
package reset

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

// Service очищает сессию по токену.
type Service interface {
	Forget(ctx context.Context, token string) (string, error)
}

// Releaser освобождает контроллер сессии.
type Releaser interface {
	Release(sid string)
}

// Handler обрабатывает сброс сессии.
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
// @Summary Сброс сессии
// @Description Очищает сохранённую сессию и закрывает её контроллер. Токен необязателен.
// @Tags Auth
// @Produce  json
// @Success 200 {object} response.Response
// @Router /session/reset [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.reset"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	if token, ok := middlewarectx.BearerToken(r); ok {
		sid, err := h.sessions.Forget(r.Context(), token)
		if err != nil {
			log.Warn("session could not be cleared", sl.Err(err))
		} else {
			h.controllers.Release(sid)
			log.Info("session reset", slog.String("session_id", sid))
		}
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reset": true,
	}))
}
