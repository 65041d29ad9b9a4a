// Package middlewarectx содержит HTTP middleware панели.
//
// AuthMiddleware проверяет токен сессии в заголовке Authorization, восстанавливает
// актора из хранилища сессий и кладёт в контекст запроса актора и контроллер
// синхронизации его сессии. Остальные middleware отвечают за доступность хранилища,
// ограничение частоты входа, метрики и перехват паник.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
)

// SessionResolver восстанавливает сессию по токену.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (string, models.Actor, error)
}

// ControllerProvider выдаёт контроллер синхронизации сессии.
type ControllerProvider interface {
	Acquire(ctx context.Context, sid string, actor models.Actor) (*panel.Controller, error)
}

// BearerToken извлекает токен из заголовка Authorization.
func BearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// AuthMiddleware возвращает middleware аутентификации.
//
// Без валидной сессии запрос отклоняется с 401. Если панель недоступна,
// контроллер не выдаётся и клиент получает 503 с кодом store_unreachable.
func AuthMiddleware(log *slog.Logger, sessions SessionResolver, controllers ControllerProvider) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.AuthMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			token, ok := BearerToken(r)
			if !ok {
				log.Warn("missing or invalid authorization header")
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorWithCode(response.CodeUnauthorized, "missing or invalid authorization header"))
				return
			}

			sid, actor, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				log.Warn("session rejected", sl.Err(err))
				w.WriteHeader(http.StatusUnauthorized)
				render.JSON(w, r, response.ErrorWithCode(response.CodeUnauthorized, "invalid or expired session"))
				return
			}

			ctrl, err := controllers.Acquire(r.Context(), sid, actor)
			if err != nil {
				if !errors.Is(err, panel.ErrUnavailable) {
					log.Error("failed to acquire controller", sl.Err(err))
				}
				response.Fail(w, r, err)
				return
			}

			ctx := WithSession(r.Context(), sid, actor, ctrl)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
