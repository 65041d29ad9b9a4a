package access

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/password"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// defaultFullName подставляется, если имя реселлера не указано.
const defaultFullName = "Reseller"

// AccountDraft — черновик учётной записи из формы администратора.
type AccountDraft struct {
	ID       string      `json:"id"`
	Username string      `json:"username" validate:"required"`
	Password string      `json:"password"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role" validate:"omitempty,oneof=admin reseller"`
}

// PrepareAccountForWrite проверяет права администратора и защиту главного администратора,
// хэширует новый пароль или сохраняет прежний хэш, если пароль в черновике пуст.
// Пустая роль при редактировании сохраняет прежнюю, при создании означает реселлера.
func PrepareAccountForWrite(d AccountDraft, actor models.Actor, existing *models.Account) (models.Account, error) {
	const op = "access.PrepareAccountForWrite"
	if !CanManageAccounts(actor) {
		return models.Account{}, fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	d.Username = strings.TrimSpace(d.Username)
	if err := check(d); err != nil {
		return models.Account{}, fmt.Errorf("%s: %w", op, err)
	}
	if d.Role == "" {
		d.Role = models.RoleReseller
		if existing != nil {
			d.Role = existing.Role
		}
	}
	if d.FullName == "" {
		d.FullName = defaultFullName
		if existing != nil {
			d.FullName = existing.FullName
		}
	}

	acc := models.Account{
		Username: d.Username,
		FullName: d.FullName,
		Role:     d.Role,
	}
	if existing != nil {
		if ProtectPrimaryAdministrator(existing.ID) && d.Role != existing.Role {
			return models.Account{}, fmt.Errorf("%s: %w", op, ErrPrimaryAdministrator)
		}
		acc.ID = existing.ID
		acc.Credential = existing.Credential
	} else {
		acc.ID = uuid.NewString()
	}

	switch {
	case d.Password != "":
		hash, err := password.GetHash(d.Password)
		if err != nil {
			return models.Account{}, fmt.Errorf("%s: %w", op, err)
		}
		acc.Credential = hash
	case acc.Credential == "":
		return models.Account{}, fmt.Errorf("%s: %w: password is required", op, ErrInvalid)
	}
	return acc, nil
}

// AuthorizeAccountDelete разрешает удаление только администратору
// и никогда — для главного администратора.
func AuthorizeAccountDelete(actor models.Actor, id string) error {
	const op = "access.AuthorizeAccountDelete"
	if !CanManageAccounts(actor) {
		return fmt.Errorf("%s: %w", op, ErrForbidden)
	}
	if ProtectPrimaryAdministrator(id) {
		return fmt.Errorf("%s: %w", op, ErrPrimaryAdministrator)
	}
	return nil
}
