// Package snapshot отдаёт текущий снимок сессии: подписки в области видимости актора,
// предложения, учётные записи (только администратору), состояние синхронизации
// и число подписок, истекающих в ближайшие 7 дней.
package snapshot

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/dashboard"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
)

// Service — контроллер синхронизации сессии.
type Service interface {
	Snapshot() *models.Snapshot
	Status() panel.Status
}

// Response — данные ответа.
type Response struct {
	Actor         models.Actor          `json:"actor"`
	Status        panel.Status          `json:"sync"`
	ExpiringSoon  int                   `json:"expiring_soon"`
	Subscriptions []models.Subscription `json:"subscriptions"`
	Offers        []models.Offer        `json:"offers"`
	Accounts      []models.Account      `json:"accounts"`
}

// Handler обрабатывает запрос снимка.
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
// @Summary Снимок данных сессии
// @Description Подписки фильтруются по области видимости актора, затем по строке поиска q (имя или e-mail).
// @Tags Panel
// @Produce  json
// @Security BearerAuth
// @Param q query string false "Поиск по имени или e-mail"
// @Success 200 {object} response.Response{data=Response}
// @Failure 401 {object} response.ErrorResponse "Нет сессии"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /snapshot [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.panel.snapshot"

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

	snap := svc.Snapshot()
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	resp := Response{
		Actor:         actor,
		Status:        svc.Status(),
		ExpiringSoon:  dashboard.ExpiringSoon(snap.Subscriptions, h.now()),
		Subscriptions: Search(snap.Subscriptions, query),
		Offers:        snap.Offers,
		Accounts:      snap.Accounts,
	}
	log.Debug("snapshot served", slog.Int("subscriptions", len(resp.Subscriptions)), slog.String("state", string(resp.Status.State)))

	render.JSON(w, r, response.StatusOKWithData(resp))
}

// Search оставляет подписки, у которых имя или e-mail содержат query без учёта регистра.
// Пустой запрос возвращает всё.
func Search(subs []models.Subscription, query string) []models.Subscription {
	if query == "" {
		return subs
	}
	q := strings.ToLower(query)
	found := make([]models.Subscription, 0, len(subs))
	for _, s := range subs {
		if strings.Contains(strings.ToLower(s.FullName), q) || strings.Contains(strings.ToLower(s.Email), q) {
			found = append(found, s)
		}
	}
	return found
}
