package models

import "time"

// Status — статус подписки. Выставляется оператором вручную,
// автоматического перевода в expired по дате окончания нет.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusPending Status = "pending"
	StatusTrial   Status = "trial"
)

// Statuses перечисляет все допустимые статусы.
var Statuses = []Status{StatusActive, StatusExpired, StatusPending, StatusTrial}

// Subscription — подписка конкретного клиента на предложение.
// OfferID и OwnerID — ссылки только для поиска: предложение или владелец
// могут исчезнуть, и тогда ссылка считается висячей.
type Subscription struct {
	ID        string    `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"` // MAC-адрес приставки
	OfferID   string    `json:"offer_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    Status    `json:"status"`
	Notes     string    `json:"notes,omitempty"`
	OwnerID   string    `json:"owner_id"`
}
