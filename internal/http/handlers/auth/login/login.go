// Package login реализует HTTP-обработчик входа в панель.
//
// Обработчик декодирует и валидирует учётные данные, делегирует проверку менеджеру
// сессий и возвращает токен сессии вместе с актором. Неверный логин и неверный пароль
// не различаются.
package login

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Request — учётные данные для входа.
type Request struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required"`
}

// Service открывает сессию по логину и паролю.
type Service interface {
	Login(ctx context.Context, username, password string) (string, models.Actor, error)
}

// Handler обрабатывает HTTP-запросы входа.
type Handler struct {
	log      *slog.Logger
	sessions Service
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions Service) *Handler {
	return &Handler{
		log:      log,
		sessions: sessions,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход в панель
// @Description Проверяет логин и пароль, открывает сессию и возвращает её токен.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Учетные данные"
// @Success 200 {object} response.Response "Токен и актор"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверные учетные данные"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много попыток"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Warn("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	token, actor, err := h.sessions.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		log.Warn("login failed", slog.String("username", req.Username), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("login success", slog.String("username", actor.Username), slog.String("role", string(actor.Role)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"token": token,
		"actor": actor,
	}))
}
