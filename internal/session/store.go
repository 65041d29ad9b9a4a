// Package session хранит текущего актора каждой сессии в redis и управляет
// жизненным циклом сессии: вход, восстановление по токену, выход.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/magabrotheeeer/iptv-panel/internal/config"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// DefaultKeyPrefix — ключ, под которым лежит сериализованный текущий актор.
const DefaultKeyPrefix = "iptv_current_user:"

// ErrNoSession — сессия не найдена или истекла.
var ErrNoSession = errors.New("session not found")

// Store сохраняет актора сессии в виде JSON под ключом <prefix><sid>.
type Store struct {
	Db     *redis.Client
	prefix string
}

// InitStore подключается к redis и проверяет соединение.
func InitStore(ctx context.Context, cfg config.RedisConnection, prefix string) (*Store, error) {
	const op = "session.InitStore"
	db := redis.NewClient(&redis.Options{
		Addr:         cfg.AddressRedis,
		Password:     cfg.Password,
		DB:           cfg.DB,
		Username:     cfg.User,
		MaxRetries:   cfg.MaxRetries,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.TimeoutRedis,
		WriteTimeout: cfg.TimeoutRedis,
	})

	if err := db.Ping(ctx).Err(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewStore(db, prefix), nil
}

// NewStore оборачивает готовый клиент.
func NewStore(db *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &Store{Db: db, prefix: prefix}
}

// Close закрывает клиент redis.
func (s *Store) Close() error {
	return s.Db.Close()
}

func (s *Store) key(sid string) string {
	return s.prefix + sid
}

// Save записывает актора сессии sid.
func (s *Store) Save(ctx context.Context, sid string, actor models.Actor, ttl time.Duration) error {
	const op = "session.Store.Save"
	data, err := json.Marshal(actor)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.Db.Set(ctx, s.key(sid), data, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Load читает актора сессии sid.
func (s *Store) Load(ctx context.Context, sid string) (models.Actor, error) {
	const op = "session.Store.Load"
	var actor models.Actor

	val, err := s.Db.Get(ctx, s.key(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return actor, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	if err != nil {
		return actor, fmt.Errorf("%s: %w", op, err)
	}
	if err := json.Unmarshal(val, &actor); err != nil {
		return actor, fmt.Errorf("%s: %w", op, err)
	}
	if actor.ID == "" {
		return actor, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	return actor, nil
}

// Clear удаляет сессию. Отсутствие ключа ошибкой не считается.
func (s *Store) Clear(ctx context.Context, sid string) error {
	const op = "session.Store.Clear"
	if err := s.Db.Del(ctx, s.key(sid)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
