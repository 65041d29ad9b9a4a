package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/month"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Draft — черновик подписки из формы оператора.
// EndOverridden отмечает, что оператор задал дату окончания явно
// после последней смены предложения.
type Draft struct {
	ID            string        `json:"id"`
	FullName      string        `json:"full_name" validate:"required"`
	Email         string        `json:"email" validate:"required,email"`
	Phone         string        `json:"phone"`
	DeviceID      string        `json:"device_id"`
	OfferID       string        `json:"offer_id" validate:"required"`
	StartDate     time.Time     `json:"start_date" validate:"required"`
	EndDate       time.Time     `json:"end_date"`
	EndOverridden bool          `json:"-"`
	Status        models.Status `json:"status" validate:"required,oneof=active expired pending trial"`
	Notes         string        `json:"notes"`
	OwnerID       string        `json:"owner_id"` // игнорируется при записи
}

// SelectOffer выбирает предложение и пересчитывает дату окончания,
// сбрасывая ручную дату окончания.
func (d *Draft) SelectOffer(o models.Offer) {
	d.OfferID = o.ID
	d.EndDate = month.EndDate(d.StartDate, o.DurationMonths)
	d.EndOverridden = false
}

// OverrideEnd фиксирует дату окончания, заданную оператором явно.
func (d *Draft) OverrideEnd(t time.Time) {
	d.EndDate = t
	d.EndOverridden = true
}

// PrepareSubscriptionForWrite нормализует черновик перед записью.
//
// Владелец берётся из existing при редактировании и из актора при создании,
// значение OwnerID из черновика игнорируется всегда. Дата окончания вычисляется
// как начало плюс длительность предложения, если оператор не задал её явно;
// при редактировании без смены предложения и даты начала сохраняется прежняя.
func PrepareSubscriptionForWrite(d Draft, actor models.Actor, existing *models.Subscription, offers map[string]models.Offer) (models.Subscription, error) {
	const op = "access.PrepareSubscriptionForWrite"
	if actor.ID == "" {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	d.FullName = strings.TrimSpace(d.FullName)
	d.Email = strings.TrimSpace(d.Email)
	if err := check(d); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}

	sub := models.Subscription{
		FullName:  d.FullName,
		Email:     d.Email,
		Phone:     strings.TrimSpace(d.Phone),
		DeviceID:  strings.TrimSpace(d.DeviceID),
		OfferID:   d.OfferID,
		StartDate: d.StartDate.UTC(),
		Status:    d.Status,
		Notes:     d.Notes,
	}
	if existing != nil {
		sub.ID = existing.ID
		sub.OwnerID = existing.OwnerID
	} else {
		sub.ID = uuid.NewString()
		sub.OwnerID = actor.ID
	}

	switch {
	case d.EndOverridden:
		if d.EndDate.Before(d.StartDate) {
			return models.Subscription{}, fmt.Errorf("%s: %w: end date precedes start date", op, ErrInvalid)
		}
		sub.EndDate = d.EndDate.UTC()
	case existing != nil && existing.OfferID == d.OfferID && existing.StartDate.Equal(d.StartDate):
		sub.EndDate = existing.EndDate
	default:
		offer, ok := offers[d.OfferID]
		if !ok {
			return models.Subscription{}, fmt.Errorf("%s: %w: %w %q", op, ErrInvalid, ErrUnknownOffer, d.OfferID)
		}
		sub.EndDate = month.EndDate(sub.StartDate, offer.DurationMonths)
	}
	return sub, nil
}
