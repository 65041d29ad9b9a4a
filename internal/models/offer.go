package models

// Offer — тарифное предложение (пакет каналов).
type Offer struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	DurationMonths int     `json:"duration_months"`
	MaxConnections int     `json:"max_connections"`
	Description    string  `json:"description"`
	ImageURL       string  `json:"image_url,omitempty"`
}

// OfferIndex строит индекс предложений по идентификатору.
func OfferIndex(offers []Offer) map[string]Offer {
	idx := make(map[string]Offer, len(offers))
	for _, o := range offers {
		idx[o.ID] = o
	}
	return idx
}
