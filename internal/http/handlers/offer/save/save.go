// Package save реализует HTTP-обработчик создания и изменения тарифного предложения.
// Управлять предложениями может только администратор.
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

// Request — форма предложения.
type Request struct {
	Name           string  `json:"name" example:"Gold"`
	Price          float64 `json:"price" example:"25"`
	DurationMonths int     `json:"duration_months" example:"6"`
	MaxConnections int     `json:"max_connections" example:"2"`
	Description    string  `json:"description"`
	ImageURL       string  `json:"image_url,omitempty"`
}

// Service — контроллер синхронизации сессии.
type Service interface {
	SaveOffer(ctx context.Context, d access.OfferDraft) (models.Offer, error)
}

// Handler обрабатывает сохранение предложения.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Создать или изменить предложение
// @Tags Offers
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string false "ID предложения (только для PUT)"
// @Param request body Request true "Предложение"
// @Success 200 {object} response.Response{data=models.Offer}
// @Failure 403 {object} response.ErrorResponse "Только для администратора"
// @Failure 404 {object} response.ErrorResponse "Предложение не найдено"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Router /offers [post]
// @Router /offers/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.offer.save"

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

	offer, err := svc.SaveOffer(r.Context(), access.OfferDraft{
		ID:             chi.URLParam(r, "id"),
		Name:           req.Name,
		Price:          req.Price,
		DurationMonths: req.DurationMonths,
		MaxConnections: req.MaxConnections,
		Description:    req.Description,
		ImageURL:       req.ImageURL,
	})
	if err != nil {
		log.Warn("offer not saved", sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("offer saved", slog.String("id", offer.ID))
	render.JSON(w, r, response.StatusOKWithData(offer))
}
