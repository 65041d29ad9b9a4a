package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/password"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// DefaultOffers — предложения, которыми заполняется пустая таблица при первом запуске.
var DefaultOffers = []models.Offer{
	{ID: "1", Name: "Pack Basic", Price: 6500, DurationMonths: 1, MaxConnections: 1, Description: "SD/HD access, 1 screen"},
	{ID: "2", Name: "Pack Gold", Price: 16500, DurationMonths: 3, MaxConnections: 2, Description: "FHD/4K access, 2 screens, VOD included"},
	{ID: "3", Name: "Pack Platinum", Price: 52000, DurationMonths: 12, MaxConnections: 4, Description: "VIP access, 4 screens, series and movies"},
}

// SeedResult сообщает, что именно было создано при заполнении.
type SeedResult struct {
	AdminCreated  bool
	OffersCreated int
}

// Seed создаёт главного администратора, если его нет, и набор предложений по умолчанию,
// если таблица предложений пуста. Повторный вызов ничего не меняет: существующий
// главный администратор ищется по идентификатору и никогда не перезаписывается.
func (s *Storage) Seed(ctx context.Context, adminPassword string) (SeedResult, error) {
	const op = "storage.Seed"
	var res SeedResult

	_, err := s.FindAccountByID(ctx, models.PrimaryAdminID)
	switch {
	case errors.Is(err, ErrNotFound):
		hash, err := password.GetHash(adminPassword)
		if err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}
		admin := models.Account{
			ID:         models.PrimaryAdminID,
			Username:   models.PrimaryAdminID,
			Credential: hash,
			FullName:   "Primary Administrator",
			Role:       models.RoleAdmin,
		}
		created, err := s.insert(ctx, op, tableAccounts, accountColumns, accountToRow(admin).args())
		if err != nil {
			return res, err
		}
		res.AdminCreated = created
	case err != nil:
		return res, fmt.Errorf("%s: %w", op, err)
	}

	offers, err := s.ListOffers(ctx)
	if err != nil {
		return res, fmt.Errorf("%s: %w", op, err)
	}
	if len(offers) == 0 {
		for _, o := range DefaultOffers {
			if err := s.UpsertOffer(ctx, o); err != nil {
				return res, fmt.Errorf("%s: %w", op, err)
			}
			res.OffersCreated++
		}
	}
	return res, nil
}
