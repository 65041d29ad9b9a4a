package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
)

// Availability сообщает, прошла ли проверка хранилища при старте.
type Availability interface {
	Available() bool
}

// AvailabilityMiddleware отвечает 503 на любой запрос, пока хранилище недоступно.
// Состояние терминально до перезапуска процесса.
func AvailabilityMiddleware(log *slog.Logger, a Availability) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !a.Available() {
				log.Warn("request rejected: remote store is unreachable", slog.String("path", r.URL.Path))
				w.WriteHeader(http.StatusServiceUnavailable)
				render.JSON(w, r, response.ErrorWithCode(response.CodeStoreUnreachable, "remote store is unreachable, check the storage configuration"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
