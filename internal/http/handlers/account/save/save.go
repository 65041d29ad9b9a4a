// Package save реализует HTTP-обработчик создания и изменения учётной записи.
// Доступен только администратору; пустой пароль при изменении сохраняет прежний.
package save

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Request — форма учётной записи.
type Request struct {
	Username string      `json:"username" example:"reseller1"`
	Password string      `json:"password,omitempty"`
	FullName string      `json:"full_name" example:"John Reseller"`
	Role     models.Role `json:"role" example:"reseller"`
}

// Service — контроллер синхронизации сессии.
type Service interface {
	SaveAccount(ctx context.Context, d access.AccountDraft) (models.Account, error)
}

// Handler обрабатывает сохранение учётной записи.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Создать или изменить учётную запись
// @Tags Accounts
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string false "ID учётной записи (только для PUT)"
// @Param request body Request true "Учётная запись"
// @Success 200 {object} response.Response{data=models.Account}
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /accounts [post]
// @Router /accounts/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.account.save"

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

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	acc, err := svc.SaveAccount(r.Context(), access.AccountDraft{
		ID:       chi.URLParam(r, "id"),
		Username: req.Username,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	})
	if err != nil {
		log.Warn("account not saved", slog.String("username", req.Username), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("account saved", slog.String("id", acc.ID), slog.String("role", string(acc.Role)))
	render.JSON(w, r, response.StatusOKWithData(acc))
}
