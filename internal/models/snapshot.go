package models

// Snapshot — полный набор данных, видимый конкретному актору на момент последнего обновления.
// Публикуется целиком, частичных обновлений не бывает.
type Snapshot struct {
	Subscriptions []Subscription `json:"subscriptions"`
	Offers        []Offer        `json:"offers"`
	Accounts      []Account      `json:"accounts"`
}

// Empty возвращает пустой снимок с инициализированными срезами,
// чтобы в JSON всегда были массивы, а не null.
func Empty() *Snapshot {
	return &Snapshot{
		Subscriptions: []Subscription{},
		Offers:        []Offer{},
		Accounts:      []Account{},
	}
}
