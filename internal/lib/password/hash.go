// Package password хэширует пароли учётных записей панели через bcrypt и сверяет их при входе.
package password

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrMismatch — пароль не соответствует сохранённому хэшу.
var ErrMismatch = errors.New("password does not match")

// GetHash возвращает bcrypt-хэш пароля для хранения в таблице accounts.
func GetHash(password string) (string, error) {
	const op = "password.GetHash"
	if password == "" {
		return "", fmt.Errorf("%s: empty password", op)
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// CompareHash сверяет введённый пароль с хэшем. Несовпадение возвращается как ErrMismatch,
// испорченный хэш — как обёрнутая ошибка bcrypt.
func CompareHash(hash, password string) error {
	const op = "password.CompareHash"
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return fmt.Errorf("%s: %w", op, ErrMismatch)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
