package middlewarectx

import (
	"context"

	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// SessionID — ключ идентификатора сессии в контексте.
	SessionID Key = "session_id"
	// Actor — ключ аутентифицированного актора в контексте.
	Actor Key = "actor"
	// Controller — ключ контроллера синхронизации сессии в контексте.
	Controller Key = "controller"
)

// WithSession кладёт в контекст сессию, актора и контроллер.
func WithSession(ctx context.Context, sid string, actor models.Actor, controller any) context.Context {
	ctx = context.WithValue(ctx, SessionID, sid)
	ctx = context.WithValue(ctx, Actor, actor)
	return context.WithValue(ctx, Controller, controller)
}

// ActorFrom возвращает актора запроса.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(Actor).(models.Actor)
	return actor, ok
}

// SessionIDFrom возвращает идентификатор сессии запроса.
func SessionIDFrom(ctx context.Context) string {
	sid, _ := ctx.Value(SessionID).(string)
	return sid
}

// ControllerFrom возвращает контроллер сессии, приведённый к интерфейсу,
// который нужен обработчику.
func ControllerFrom[T any](ctx context.Context) (T, bool) {
	c, ok := ctx.Value(Controller).(T)
	return c, ok
}
