// Package save реализует HTTP-обработчик создания (POST) и изменения (PUT) подписки.
//
// Дата окончания вычисляется из даты начала и длительности выбранного предложения,
// если оператор не передал end_date явно. Владелец записи назначается на сервере:
// при создании это текущий актор, при изменении сохраняется прежний.
package save

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/http/response"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Request — форма подписки. Даты принимаются в формате 2006-01-02 или RFC 3339.
// Пустой end_date означает расчёт по предложению.
type Request struct {
	FullName  string        `json:"full_name"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	DeviceID  string        `json:"device_id,omitempty"`
	OfferID   string        `json:"offer_id"`
	StartDate string        `json:"start_date" example:"2024-01-15"`
	EndDate   string        `json:"end_date,omitempty" example:"2024-02-15"`
	Status    models.Status `json:"status" example:"active"`
	Notes     string        `json:"notes,omitempty"`
}

// Service — контроллер синхронизации сессии.
type Service interface {
	Snapshot() *models.Snapshot
	SaveSubscription(ctx context.Context, d access.Draft) (models.Subscription, error)
}

// Handler обрабатывает сохранение подписки.
type Handler struct {
	log *slog.Logger
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger) *Handler {
	return &Handler{log: log}
}

// ServeHTTP godoc
// @Summary Создать или изменить подписку
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string false "ID подписки (только для PUT)"
// @Param request body Request true "Подписка"
// @Success 200 {object} response.Response{data=models.Subscription}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или дата"
// @Failure 404 {object} response.ErrorResponse "Подписка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Хранилище отклонило запись"
// @Router /subscriptions [post]
// @Router /subscriptions/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.save"

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

	draft, err := buildDraft(chi.URLParam(r, "id"), req, svc.Snapshot().Offers)
	if err != nil {
		log.Warn("invalid date", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	sub, err := svc.SaveSubscription(r.Context(), draft)
	if err != nil {
		log.Warn("subscription not saved", slog.String("id", draft.ID), sl.Err(err))
		response.Fail(w, r, err)
		return
	}

	log.Info("subscription saved", slog.String("id", sub.ID))
	render.JSON(w, r, response.StatusOKWithData(sub))
}

// buildDraft переносит форму в черновик. Выбор известного предложения пересчитывает
// дату окончания, явная дата окончания её фиксирует.
func buildDraft(id string, req Request, offers []models.Offer) (access.Draft, error) {
	d := access.Draft{
		ID:       id,
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		DeviceID: req.DeviceID,
		OfferID:  req.OfferID,
		Status:   req.Status,
		Notes:    req.Notes,
	}

	if req.StartDate != "" {
		start, err := parseDate(req.StartDate)
		if err != nil {
			return access.Draft{}, fmt.Errorf("invalid start_date: %w", err)
		}
		d.StartDate = start
	}
	for _, o := range offers {
		if o.ID == req.OfferID {
			d.SelectOffer(o)
			break
		}
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return access.Draft{}, fmt.Errorf("invalid end_date: %w", err)
		}
		d.OverrideEnd(end)
	}
	return d, nil
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
