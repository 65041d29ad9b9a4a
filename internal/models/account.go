// Package models содержит доменные структуры панели: учётные записи (администратор и реселлеры),
// тарифные предложения и подписки клиентов, а также снимок данных, которым оперирует контроллер синхронизации.
package models

// Role определяет роль учётной записи.
type Role string

const (
	// RoleAdmin — администратор, видит и управляет всеми данными.
	RoleAdmin Role = "admin"
	// RoleReseller — реселлер, видит только своих абонентов.
	RoleReseller Role = "reseller"
)

// PrimaryAdminID — зарезервированный идентификатор главного администратора.
// Такую учётную запись нельзя удалить и нельзя сменить ей роль.
const PrimaryAdminID = "admin"

// Account представляет учётную запись пользователя панели.
type Account struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	Credential string `json:"-"` // bcrypt-хэш пароля, наружу не сериализуется
	FullName   string `json:"full_name"`
	Role       Role   `json:"role"`
}

// Actor — аутентифицированная учётная запись, от имени которой выполняются операции.
type Actor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
}

// IsAdmin сообщает, является ли актор администратором.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// ActorFromAccount отбрасывает секрет и возвращает актора.
func ActorFromAccount(acc Account) Actor {
	return Actor{
		ID:       acc.ID,
		Username: acc.Username,
		FullName: acc.FullName,
		Role:     acc.Role,
	}
}
