// Package jwt реализует выпуск и разбор токенов сессии панели.
package jwt

import (
	"time"
)

// Maker описывает выпуск и разбор токенов сессии.
type Maker interface {
	GenerateToken(sessionID, accountID, role string) (string, error)
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl подписывает токены секретным ключом HS256.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
