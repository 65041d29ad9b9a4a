package health

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

// Handler отвечает на проверку живости.
type Handler struct {
	log   *slog.Logger
	panel Availability
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, panel Availability) *Handler {
	return &Handler{
		log:   log,
		panel: panel,
	}
}

// ServeHTTP godoc
// @Summary Проверка живости
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.panel.Available() {
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.ErrorWithCode(response.CodeStoreUnreachable, "remote store is unreachable"))
		return
	}
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"status": "ok",
	}))
}
