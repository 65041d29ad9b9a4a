package storage

import (
	"database/sql"
	"time"

	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Хранилище использует snake_case и собственные имена колонок (password, mac_address,
// reseller_id), доменная модель — свои. Для каждого вида записи ниже описано
// явное двустороннее отображение: упорядоченный список колонок, строка таблицы
// и функции toRow/fromRow. Порядок колонок, dest() и args() обязан совпадать.

const (
	tableAccounts      = "accounts"
	tableOffers        = "offers"
	tableSubscriptions = "subscribers"
)

var accountColumns = []string{"id", "username", "password", "full_name", "role"}

type accountRow struct {
	ID       string
	Username string
	Password string
	FullName string
	Role     string
}

func (r *accountRow) dest() []any {
	return []any{&r.ID, &r.Username, &r.Password, &r.FullName, &r.Role}
}

func (r accountRow) args() []any {
	return []any{r.ID, r.Username, r.Password, r.FullName, r.Role}
}

func accountToRow(a models.Account) accountRow {
	return accountRow{
		ID:       a.ID,
		Username: a.Username,
		Password: a.Credential,
		FullName: a.FullName,
		Role:     string(a.Role),
	}
}

func accountFromRow(r accountRow) models.Account {
	return models.Account{
		ID:         r.ID,
		Username:   r.Username,
		Credential: r.Password,
		FullName:   r.FullName,
		Role:       models.Role(r.Role),
	}
}

var offerColumns = []string{"id", "name", "price", "duration_months", "max_connections", "description", "image_url"}

type offerRow struct {
	ID             string
	Name           string
	Price          float64
	DurationMonths int
	MaxConnections int
	Description    string
	ImageURL       sql.NullString
}

func (r *offerRow) dest() []any {
	return []any{&r.ID, &r.Name, &r.Price, &r.DurationMonths, &r.MaxConnections, &r.Description, &r.ImageURL}
}

func (r offerRow) args() []any {
	return []any{r.ID, r.Name, r.Price, r.DurationMonths, r.MaxConnections, r.Description, r.ImageURL}
}

func offerToRow(o models.Offer) offerRow {
	return offerRow{
		ID:             o.ID,
		Name:           o.Name,
		Price:          o.Price,
		DurationMonths: o.DurationMonths,
		MaxConnections: o.MaxConnections,
		Description:    o.Description,
		ImageURL:       nullString(o.ImageURL),
	}
}

func offerFromRow(r offerRow) models.Offer {
	return models.Offer{
		ID:             r.ID,
		Name:           r.Name,
		Price:          r.Price,
		DurationMonths: r.DurationMonths,
		MaxConnections: r.MaxConnections,
		Description:    r.Description,
		ImageURL:       r.ImageURL.String,
	}
}

var subscriptionColumns = []string{
	"id", "full_name", "email", "phone", "offer_id", "start_date",
	"end_date", "status", "notes", "mac_address", "reseller_id",
}

type subscriptionRow struct {
	ID         string
	FullName   string
	Email      string
	Phone      sql.NullString
	OfferID    string
	StartDate  time.Time
	EndDate    time.Time
	Status     string
	Notes      sql.NullString
	MacAddress sql.NullString
	ResellerID string
}

func (r *subscriptionRow) dest() []any {
	return []any{
		&r.ID, &r.FullName, &r.Email, &r.Phone, &r.OfferID, &r.StartDate,
		&r.EndDate, &r.Status, &r.Notes, &r.MacAddress, &r.ResellerID,
	}
}

func (r subscriptionRow) args() []any {
	return []any{
		r.ID, r.FullName, r.Email, r.Phone, r.OfferID, r.StartDate,
		r.EndDate, r.Status, r.Notes, r.MacAddress, r.ResellerID,
	}
}

func subscriptionToRow(s models.Subscription) subscriptionRow {
	return subscriptionRow{
		ID:         s.ID,
		FullName:   s.FullName,
		Email:      s.Email,
		Phone:      nullString(s.Phone),
		OfferID:    s.OfferID,
		StartDate:  s.StartDate.UTC(),
		EndDate:    s.EndDate.UTC(),
		Status:     string(s.Status),
		Notes:      nullString(s.Notes),
		MacAddress: nullString(s.DeviceID),
		ResellerID: s.OwnerID,
	}
}

func subscriptionFromRow(r subscriptionRow) models.Subscription {
	return models.Subscription{
		ID:        r.ID,
		FullName:  r.FullName,
		Email:     r.Email,
		Phone:     r.Phone.String,
		DeviceID:  r.MacAddress.String,
		OfferID:   r.OfferID,
		StartDate: r.StartDate.UTC(),
		EndDate:   r.EndDate.UTC(),
		Status:    models.Status(r.Status),
		Notes:     r.Notes.String,
		OwnerID:   r.ResellerID,
	}
}

// nullString переводит пустую строку в NULL: необязательные поля хранятся как NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
