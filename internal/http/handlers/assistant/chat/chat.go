// Package chat передаёт вопрос оператора генеративному сервису вместе со снимком
// его данных и возвращает ответ как есть.
package chat

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Request — вопрос оператора.
type Request struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// Generator отвечает на вопрос по данным панели.
type Generator interface {
	GenerateResponse(ctx context.Context, prompt string, subs []models.Subscription, offers []models.Offer) (string, error)
}

// Service — контроллер синхронизации сессии.
type Service interface {
	Snapshot() *models.Snapshot
}

// Handler обрабатывает вопрос ассистенту.
type Handler struct {
	log       *slog.Logger
	assistant Generator
	validate  *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, assistant Generator) *Handler {
	return &Handler{
		log:       log,
		assistant: assistant,
		validate:  validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вопрос ассистенту
// @Description Контекстом служат только подписки из области видимости актора.
// @Tags Assistant
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Вопрос"
// @Success 200 {object} response.Response
// @Failure 422 {object} response.ErrorResponse "Пустой вопрос"
// @Failure 502 {object} response.ErrorResponse "Ошибка генеративного сервиса"
// @Router /assistant/chat [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.assistant.chat"

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
	if err := h.validate.Struct(req); err != nil {
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	snap := svc.Snapshot()
	reply, err := h.assistant.GenerateResponse(r.Context(), req.Prompt, snap.Subscriptions, snap.Offers)
	if err != nil {
		log.Warn("assistant request failed", sl.Err(err))
		response.FailAssistant(w, r, err)
		return
	}

	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"reply": reply,
	}))
}
