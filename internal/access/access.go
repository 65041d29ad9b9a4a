// Package access реализует слой разграничения доступа панели: какие подписки видит актор,
// кто может управлять учётными записями и предложениями, а также нормализацию записей
// перед отправкой в хранилище. Хранилищу эти правила не доверяются: всё проверяется здесь,
// до любого сетевого вызова.
package access

import (
	"errors"

	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

var (
	// ErrForbidden — у актора нет права на операцию.
	ErrForbidden = errors.New("operation is not permitted for this actor")
	// ErrPrimaryAdministrator — попытка удалить главного администратора или сменить ему роль.
	ErrPrimaryAdministrator = errors.New("primary administrator cannot be deleted or demoted")
	// ErrNotFound — запись отсутствует или находится вне области видимости актора.
	// Эти два случая намеренно не различаются.
	ErrNotFound = errors.New("record not found")
	// ErrInvalid — запись не прошла валидацию.
	ErrInvalid = errors.New("invalid record")
	// ErrUnknownOffer — нельзя вычислить дату окончания: предложение не найдено.
	ErrUnknownOffer = errors.New("unknown offer")
)

// ScopeSubscriptions возвращает подписки, видимые актору.
// Администратор видит всё, реселлер — только записи, где он владелец.
// Функция чистая, результат не кэшируется и пересчитывается при каждом обновлении.
func ScopeSubscriptions(all []models.Subscription, actor models.Actor) []models.Subscription {
	if actor.IsAdmin() {
		return all
	}
	visible := make([]models.Subscription, 0, len(all))
	if actor.ID == "" {
		return visible
	}
	for _, s := range all {
		if s.OwnerID == actor.ID {
			visible = append(visible, s)
		}
	}
	return visible
}

// FindSubscription ищет подписку по идентификатору только среди видимых актору.
func FindSubscription(all []models.Subscription, actor models.Actor, id string) (models.Subscription, bool) {
	for _, s := range ScopeSubscriptions(all, actor) {
		if s.ID == id {
			return s, true
		}
	}
	return models.Subscription{}, false
}

// CanManageAccounts разрешает управление учётными записями только администратору.
func CanManageAccounts(actor models.Actor) bool {
	return actor.IsAdmin()
}

// CanManageOffers разрешает создание, изменение и удаление предложений только администратору.
func CanManageOffers(actor models.Actor) bool {
	return actor.IsAdmin()
}

// ProtectPrimaryAdministrator возвращает true (операция запрещена),
// если id совпадает с зарезервированным идентификатором главного администратора.
func ProtectPrimaryAdministrator(id string) bool {
	return id == models.PrimaryAdminID
}
