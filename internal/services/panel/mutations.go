package panel

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/magabrotheeeer/iptv-panel/internal/access"
	"github.com/magabrotheeeer/iptv-panel/internal/changefeed"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

func scopeFor(actor models.Actor, subs []models.Subscription) []models.Subscription {
	return access.ScopeSubscriptions(subs, actor)
}

// Все записи устроены одинаково: проверки слоя доступа по текущему снимку,
// запись в хранилище, сигнал об изменении и немедленное явное обновление.
// Снимок до подтверждения записи не меняется.

// SaveSubscription создаёт подписку (пустой ID) или изменяет видимую актору.
func (c *Controller) SaveSubscription(ctx context.Context, d access.Draft) (models.Subscription, error) {
	const op = "panel.Controller.SaveSubscription"
	snap := c.Snapshot()

	var existing *models.Subscription
	if d.ID != "" {
		found, ok := access.FindSubscription(snap.Subscriptions, c.actor, d.ID)
		if !ok {
			return models.Subscription{}, fmt.Errorf("%s: %w", op, access.ErrNotFound)
		}
		existing = &found
	}
	sub, err := access.PrepareSubscriptionForWrite(d, c.actor, existing, models.OfferIndex(snap.Offers))
	if err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.write(ctx, changefeed.SourceSubscriptions, changefeed.OpUpsert, sub.ID, func(ctx context.Context) error {
		return c.gw.UpsertSubscription(ctx, sub)
	}); err != nil {
		return models.Subscription{}, fmt.Errorf("%s: %w", op, err)
	}
	return sub, nil
}

// DeleteSubscription удаляет видимую актору подписку.
func (c *Controller) DeleteSubscription(ctx context.Context, id string) error {
	const op = "panel.Controller.DeleteSubscription"
	if _, ok := access.FindSubscription(c.Snapshot().Subscriptions, c.actor, id); !ok {
		return fmt.Errorf("%s: %w", op, access.ErrNotFound)
	}
	if err := c.write(ctx, changefeed.SourceSubscriptions, changefeed.OpDelete, id, func(ctx context.Context) error {
		return c.gw.DeleteSubscription(ctx, id)
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SaveOffer создаёт или изменяет предложение. Только для администратора.
func (c *Controller) SaveOffer(ctx context.Context, d access.OfferDraft) (models.Offer, error) {
	const op = "panel.Controller.SaveOffer"
	if !access.CanManageOffers(c.actor) {
		return models.Offer{}, fmt.Errorf("%s: %w", op, access.ErrForbidden)
	}

	var existing *models.Offer
	if d.ID != "" {
		found, ok := findOffer(c.Snapshot().Offers, d.ID)
		if !ok {
			return models.Offer{}, fmt.Errorf("%s: %w", op, access.ErrNotFound)
		}
		existing = &found
	}
	offer, err := access.PrepareOfferForWrite(d, c.actor, existing)
	if err != nil {
		return models.Offer{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.write(ctx, changefeed.SourceOffers, changefeed.OpUpsert, offer.ID, func(ctx context.Context) error {
		return c.gw.UpsertOffer(ctx, offer)
	}); err != nil {
		return models.Offer{}, fmt.Errorf("%s: %w", op, err)
	}
	return offer, nil
}

// SetOfferImage сохраняет ссылку на иллюстрацию предложения.
func (c *Controller) SetOfferImage(ctx context.Context, id, imageURL string) (models.Offer, error) {
	const op = "panel.Controller.SetOfferImage"
	if !access.CanManageOffers(c.actor) {
		return models.Offer{}, fmt.Errorf("%s: %w", op, access.ErrForbidden)
	}
	offer, ok := findOffer(c.Snapshot().Offers, id)
	if !ok {
		return models.Offer{}, fmt.Errorf("%s: %w", op, access.ErrNotFound)
	}
	offer.ImageURL = imageURL
	if err := c.write(ctx, changefeed.SourceOffers, changefeed.OpUpsert, offer.ID, func(ctx context.Context) error {
		return c.gw.UpsertOffer(ctx, offer)
	}); err != nil {
		return models.Offer{}, fmt.Errorf("%s: %w", op, err)
	}
	return offer, nil
}

// DeleteOffer удаляет предложение. Подписки со ссылкой на него не трогаются.
func (c *Controller) DeleteOffer(ctx context.Context, id string) error {
	const op = "panel.Controller.DeleteOffer"
	if err := access.AuthorizeOfferDelete(c.actor); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := findOffer(c.Snapshot().Offers, id); !ok {
		return fmt.Errorf("%s: %w", op, access.ErrNotFound)
	}
	if err := c.write(ctx, changefeed.SourceOffers, changefeed.OpDelete, id, func(ctx context.Context) error {
		return c.gw.DeleteOffer(ctx, id)
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SaveAccount создаёт или изменяет учётную запись. Только для администратора.
func (c *Controller) SaveAccount(ctx context.Context, d access.AccountDraft) (models.Account, error) {
	const op = "panel.Controller.SaveAccount"
	if !access.CanManageAccounts(c.actor) {
		return models.Account{}, fmt.Errorf("%s: %w", op, access.ErrForbidden)
	}
	accounts := c.Snapshot().Accounts

	var existing *models.Account
	if d.ID != "" {
		found, ok := findAccount(accounts, d.ID)
		if !ok {
			return models.Account{}, fmt.Errorf("%s: %w", op, access.ErrNotFound)
		}
		existing = &found
	}
	username := strings.TrimSpace(d.Username)
	for _, a := range accounts {
		if a.Username == username && a.ID != d.ID {
			return models.Account{}, fmt.Errorf("%s: %w: username %q is taken", op, access.ErrInvalid, username)
		}
	}
	acc, err := access.PrepareAccountForWrite(d, c.actor, existing)
	if err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := c.write(ctx, changefeed.SourceAccounts, changefeed.OpUpsert, acc.ID, func(ctx context.Context) error {
		return c.gw.UpsertAccount(ctx, acc)
	}); err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}
	return acc, nil
}

// DeleteAccount удаляет учётную запись. Главного администратора удалить нельзя;
// подписки удалённого реселлера остаются с висячей ссылкой на владельца.
func (c *Controller) DeleteAccount(ctx context.Context, id string) error {
	const op = "panel.Controller.DeleteAccount"
	if err := access.AuthorizeAccountDelete(c.actor, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, ok := findAccount(c.Snapshot().Accounts, id); !ok {
		return fmt.Errorf("%s: %w", op, access.ErrNotFound)
	}
	if err := c.write(ctx, changefeed.SourceAccounts, changefeed.OpDelete, id, func(ctx context.Context) error {
		return c.gw.DeleteAccount(ctx, id)
	}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// write выполняет запись в хранилище и затем обновляет снимок.
// Ошибка обновления после успешной записи не возвращается: снимок остаётся
// прежним до следующего цикла.
func (c *Controller) write(ctx context.Context, source, operation, id string, do func(context.Context) error) error {
	log := c.log.With(slog.String("source", source), slog.String("write_op", operation), slog.String("id", id))

	if err := do(ctx); err != nil {
		writeTotal.WithLabelValues(source, operation, resultError).Inc()
		log.Error("write rejected by store", sl.Err(err))
		return err
	}
	writeTotal.WithLabelValues(source, operation, resultOK).Inc()
	log.Info("record written")

	if err := c.publisher.Publish(ctx, changefeed.Change{Source: source, Op: operation, ID: id}); err != nil {
		log.Warn("failed to publish change", sl.Err(err))
	}
	if err := c.Refresh(ctx, false); err != nil {
		log.Warn("refresh after write failed", sl.Err(err))
	}
	return nil
}

func findOffer(offers []models.Offer, id string) (models.Offer, bool) {
	for _, o := range offers {
		if o.ID == id {
			return o, true
		}
	}
	return models.Offer{}, false
}

func findAccount(accounts []models.Account, id string) (models.Account, bool) {
	for _, a := range accounts {
		if a.ID == id {
			return a, true
		}
	}
	return models.Account{}, false
}
