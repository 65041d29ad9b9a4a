package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

func TestColumnsMatchRows(t *testing.T) {
	var a accountRow
	var o offerRow
	var s subscriptionRow

	tests := []struct {
		name    string
		columns []string
		dest    []any
		args    []any
	}{
		{name: "accounts", columns: accountColumns, dest: a.dest(), args: a.args()},
		{name: "offers", columns: offerColumns, dest: o.dest(), args: o.args()},
		{name: "subscriptions", columns: subscriptionColumns, dest: s.dest(), args: s.args()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, tt.dest, len(tt.columns))
			assert.Len(t, tt.args, len(tt.columns))
			assert.Equal(t, "id", tt.columns[0])
		})
	}
}

func TestAccountMapping(t *testing.T) {
	acc := models.Account{
		ID:         "r1",
		Username:   "bob",
		Credential: "$2a$10$hash",
		FullName:   "Bob",
		Role:       models.RoleReseller,
	}

	row := accountToRow(acc)
	assert.Equal(t, "$2a$10$hash", row.Password)
	assert.Equal(t, "reseller", row.Role)
	assert.Equal(t, acc, accountFromRow(row))
}

func TestOfferMapping_EmptyImageIsNull(t *testing.T) {
	offer := models.Offer{ID: "1", Name: "Pack Basic", Price: 6500, DurationMonths: 1, MaxConnections: 1}

	row := offerToRow(offer)
	assert.False(t, row.ImageURL.Valid)
	assert.Equal(t, offer, offerFromRow(row))

	offer.ImageURL = "data:image/jpeg;base64,AAAA"
	row = offerToRow(offer)
	assert.True(t, row.ImageURL.Valid)
	assert.Equal(t, offer, offerFromRow(row))
}

func TestSubscriptionMapping(t *testing.T) {
	moscow := time.FixedZone("MSK", 3*60*60)
	sub := models.Subscription{
		ID:        "s1",
		FullName:  "John Doe",
		Email:     "john@example.com",
		DeviceID:  "00:1A:79:00:00:01",
		OfferID:   "2",
		StartDate: time.Date(2024, 1, 15, 3, 0, 0, 0, moscow),
		EndDate:   time.Date(2024, 4, 15, 3, 0, 0, 0, moscow),
		Status:    models.StatusActive,
		OwnerID:   "r1",
	}

	row := subscriptionToRow(sub)
	assert.Equal(t, "00:1A:79:00:00:01", row.MacAddress.String)
	assert.Equal(t, "r1", row.ResellerID)
	assert.False(t, row.Phone.Valid)
	assert.False(t, row.Notes.Valid)
	assert.Equal(t, time.UTC, row.StartDate.Location())

	back := subscriptionFromRow(row)
	require.True(t, sub.StartDate.Equal(back.StartDate))
	require.True(t, sub.EndDate.Equal(back.EndDate))
	assert.Equal(t, "", back.Phone)
	assert.Equal(t, sub.DeviceID, back.DeviceID)
	assert.Equal(t, sub.OwnerID, back.OwnerID)
}

func TestUpsertQuery(t *testing.T) {
	q := upsertQuery(tableOffers, []string{"id", "name", "price"})

	assert.Equal(t,
		"INSERT INTO offers (id, name, price) VALUES ($1, $2, $3) ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price",
		q)
}

func TestInsertQuery(t *testing.T) {
	assert.Equal(t,
		"INSERT INTO accounts (id, username) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		insertQuery(tableAccounts, []string{"id", "username"}))
}

func TestSelectQuery(t *testing.T) {
	assert.Equal(t, "SELECT id, username FROM accounts", selectQuery(tableAccounts, []string{"id", "username"}))
}
