package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/jwt"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/password"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
	"github.com/magabrotheeeer/iptv-panel/internal/storage"
)

// ErrInvalidCredentials — неверный логин или пароль.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AccountFinder ищет учётную запись по логину или идентификатору.
type AccountFinder interface {
	FindAccountByUsername(ctx context.Context, username string) (*models.Account, error)
	FindAccountByID(ctx context.Context, id string) (*models.Account, error)
}

// SessionStore хранит актора сессии.
type SessionStore interface {
	Save(ctx context.Context, sid string, actor models.Actor, ttl time.Duration) error
	Load(ctx context.Context, sid string) (models.Actor, error)
	Clear(ctx context.Context, sid string) error
}

// Manager единственный владелец жизненного цикла сессии: создаёт её при входе,
// восстанавливает по токену и очищает при выходе.
type Manager struct {
	log      *slog.Logger
	accounts AccountFinder
	store    SessionStore
	tokens   jwt.Maker
	ttl      time.Duration
}

// NewManager создаёт менеджер сессий.
func NewManager(log *slog.Logger, accounts AccountFinder, store SessionStore, tokens jwt.Maker, ttl time.Duration) *Manager {
	return &Manager{
		log:      log,
		accounts: accounts,
		store:    store,
		tokens:   tokens,
		ttl:      ttl,
	}
}

// Login проверяет пароль и открывает новую сессию.
func (m *Manager) Login(ctx context.Context, username, pass string) (string, models.Actor, error) {
	const op = "session.Manager.Login"
	var actor models.Actor

	acc, err := m.accounts.FindAccountByUsername(ctx, username)
	if errors.Is(err, storage.ErrNotFound) {
		return "", actor, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", actor, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(acc.Credential, pass); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			m.log.Warn("stored credential is unreadable", sl.Op(op), slog.String("account_id", acc.ID), sl.Err(err))
		}
		return "", actor, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	actor = models.ActorFromAccount(*acc)
	sid := uuid.NewString()
	if err := m.store.Save(ctx, sid, actor, m.ttl); err != nil {
		return "", models.Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	token, err := m.tokens.GenerateToken(sid, actor.ID, string(actor.Role))
	if err != nil {
		_ = m.store.Clear(ctx, sid)
		return "", models.Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	m.log.Info("session opened", sl.Op(op), slog.String("account_id", actor.ID), slog.String("role", string(actor.Role)))
	return token, actor, nil
}

// Resolve восстанавливает сессию по токену и сверяет её с учётной записью:
// сессия удалённой учётной записи закрывается, смена роли или имени подхватывается сразу.
func (m *Manager) Resolve(ctx context.Context, token string) (string, models.Actor, error) {
	const op = "session.Manager.Resolve"

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return "", models.Actor{}, fmt.Errorf("%s: %w: %w", op, ErrNoSession, err)
	}
	actor, err := m.store.Load(ctx, claims.SessionID)
	if err != nil {
		return "", models.Actor{}, fmt.Errorf("%s: %w", op, err)
	}
	if actor.ID != claims.AccountID {
		return "", models.Actor{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	acc, err := m.accounts.FindAccountByID(ctx, actor.ID)
	if errors.Is(err, storage.ErrNotFound) {
		if err := m.store.Clear(ctx, claims.SessionID); err != nil {
			m.log.Warn("failed to clear session of removed account", sl.Op(op), sl.Err(err))
		}
		m.log.Info("session closed, account removed", sl.Op(op), slog.String("account_id", actor.ID))
		return "", models.Actor{}, fmt.Errorf("%s: %w", op, ErrNoSession)
	}
	if err != nil {
		return "", models.Actor{}, fmt.Errorf("%s: %w", op, err)
	}

	current := models.ActorFromAccount(*acc)
	if current != actor {
		if err := m.store.Save(ctx, claims.SessionID, current, m.ttl); err != nil {
			return "", models.Actor{}, fmt.Errorf("%s: %w", op, err)
		}
		actor = current
	}
	return claims.SessionID, actor, nil
}

// Logout очищает сессию sid.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	const op = "session.Manager.Logout"
	if err := m.store.Clear(ctx, sid); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	m.log.Info("session closed", sl.Op(op), slog.String("session_id", sid))
	return nil
}

// Forget очищает сессию по токену, даже если она уже недействительна в хранилище.
// Используется для сброса локального состояния после сбоя.
func (m *Manager) Forget(ctx context.Context, token string) (string, error) {
	const op = "session.Manager.Forget"

	claims, err := m.tokens.ParseToken(token)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", op, ErrNoSession, err)
	}
	if err := m.store.Clear(ctx, claims.SessionID); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return claims.SessionID, nil
}
