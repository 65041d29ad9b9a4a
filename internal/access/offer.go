package access

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// OfferDraft — черновик тарифного предложения.
type OfferDraft struct {
	ID             string  `json:"id"`
	Name           string  `json:"name" validate:"required"`
	Price          float64 `json:"price" validate:"gte=0"`
	DurationMonths int     `json:"duration_months" validate:"min=1"`
	MaxConnections int     `json:"max_connections" validate:"min=1"`
	Description    string  `json:"description"`
	ImageURL       string  `json:"image_url"`
}

// PrepareOfferForWrite проверяет права и инварианты предложения:
// длительность и число подключений — положительные целые, цена неотрицательна.
func PrepareOfferForWrite(d OfferDraft, actor models.Actor, existing *models.Offer) (models.Offer, error) {
	const op = "access.PrepareOfferForWrite"
	if !CanManageOffers(actor) {
		return models.Offer{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	d.Name = strings.TrimSpace(d.Name)
	if err := check(d); err != nil {
		return models.Offer{}, fmt.Errorf("%s: %w", op, err)
	}

	offer := models.Offer{
		Name:           d.Name,
		Price:          d.Price,
		DurationMonths: d.DurationMonths,
		MaxConnections: d.MaxConnections,
		Description:    d.Description,
		ImageURL:       d.ImageURL,
	}
	if existing != nil {
		offer.ID = existing.ID
		if offer.ImageURL == "" {
			offer.ImageURL = existing.ImageURL
		}
	} else {
		offer.ID = uuid.NewString()
	}
	return offer, nil
}

// AuthorizeOfferDelete проверяет право удалить предложение.
// Подписки, ссылающиеся на него, не трогаются и становятся висячими ссылками.
func AuthorizeOfferDelete(actor models.Actor) error {
	if !CanManageOffers(actor) {
		return fmt.Errorf("access.AuthorizeOfferDelete: %w", ErrForbidden)
	}
	return nil
}
