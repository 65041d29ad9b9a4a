package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken возвращается для токена без идентификатора сессии.
var ErrInvalidToken = errors.New("invalid token")

// SessionClaims хранит ссылку на серверную сессию. Сам актор в токен не попадает:
// он лежит в хранилище сессий и очищается при выходе.
type SessionClaims struct {
	SessionID string `json:"sid"`
	AccountID string `json:"account_id"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken подписывает токен для сессии sessionID.
func (j *MakerImpl) GenerateToken(sessionID, accountID, role string) (string, error) {
	const op = "jwt.GenerateToken"
	if sessionID == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	now := time.Now()
	claims := SessionClaims{
		SessionID: sessionID,
		AccountID: accountID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   accountID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.secretKey))
}

// ParseToken проверяет подпись, срок действия и алгоритм токена.
func (j *MakerImpl) ParseToken(tokenStr string) (*SessionClaims, error) {
	const op = "jwt.ParseToken"
	token, err := jwt.ParseWithClaims(tokenStr, &SessionClaims{}, func(_ *jwt.Token) (any, error) {
		return []byte(j.secretKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.SessionID == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}
	return claims, nil
}
