// Package dashboard вычисляет производные показатели по снимку: счётчики по статусам,
// число подписок, истекающих в ближайшие 7 дней, оценку выручки и распределения
// для графиков. Все функции чистые и пересчитываются при каждом запросе.
package dashboard

import (
	"sort"
	"time"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/month"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// ExpiringWindow — горизонт «скоро истекает».
const ExpiringWindow = 7 * 24 * time.Hour

// UnknownOffer — метка для подписок с висячей ссылкой на предложение.
const UnknownOffer = "Unknown"

// Bucket — одна группа распределения.
type Bucket struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Stats — показатели панели.
type Stats struct {
	Active       int      `json:"active"`
	Expired      int      `json:"expired"`
	ExpiringSoon int      `json:"expiring_soon"`
	Revenue      float64  `json:"revenue"`
	ByOffer      []Bucket `json:"by_offer"`
	ByStatus     []Bucket `json:"by_status"`
}

// Compute считает показатели по подпискам и предложениям снимка.
func Compute(snap *models.Snapshot, now time.Time) Stats {
	offers := models.OfferIndex(snap.Offers)
	subs := snap.Subscriptions

	return Stats{
		Active:       CountStatus(subs, models.StatusActive),
		Expired:      CountStatus(subs, models.StatusExpired),
		ExpiringSoon: ExpiringSoon(subs, now),
		Revenue:      Revenue(subs, offers),
		ByOffer:      ByOffer(subs, offers),
		ByStatus:     ByStatus(subs),
	}
}

// CountStatus считает подписки с заданным статусом.
func CountStatus(subs []models.Subscription, status models.Status) int {
	n := 0
	for _, s := range subs {
		if s.Status == status {
			n++
		}
	}
	return n
}

// ExpiringSoon считает активные подписки с окончанием в (now, now+7 дней].
func ExpiringSoon(subs []models.Subscription, now time.Time) int {
	n := 0
	for _, s := range subs {
		if s.Status == models.StatusActive && month.Within(s.EndDate, now, ExpiringWindow) {
			n++
		}
	}
	return n
}

// Revenue суммирует цены предложений по всем подпискам. Висячая ссылка даёт 0.
func Revenue(subs []models.Subscription, offers map[string]models.Offer) float64 {
	var total float64
	for _, s := range subs {
		if o, ok := offers[s.OfferID]; ok {
			total += o.Price
		}
	}
	return total
}

// ByOffer группирует подписки по названию предложения.
func ByOffer(subs []models.Subscription, offers map[string]models.Offer) []Bucket {
	return group(subs, func(s models.Subscription) string {
		if o, ok := offers[s.OfferID]; ok {
			return o.Name
		}
		return UnknownOffer
	})
}

// ByStatus группирует подписки по статусу.
func ByStatus(subs []models.Subscription) []Bucket {
	return group(subs, func(s models.Subscription) string { return string(s.Status) })
}

func group(subs []models.Subscription, key func(models.Subscription) string) []Bucket {
	counts := make(map[string]int)
	for _, s := range subs {
		counts[key(s)]++
	}
	out := make([]Bucket, 0, len(counts))
	for name, v := range counts {
		out = append(out, Bucket{Name: name, Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
