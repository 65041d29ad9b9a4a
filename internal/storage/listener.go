package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
)

// DefaultChangeChannel — канал NOTIFY, в который пишут триггеры таблиц панели.
const DefaultChangeChannel = "panel_changes"

// Listener держит выделенное соединение pgx с LISTEN на канале изменений.
// Содержимое уведомления игнорируется: это только сигнал «что-то изменилось».
type Listener struct {
	connString string
	channel    string
	retryDelay time.Duration
	log        *slog.Logger
}

// NewListener создаёт слушателя канала channel.
func NewListener(connString, channel string, retryDelay time.Duration, log *slog.Logger) *Listener {
	if channel == "" {
		channel = DefaultChangeChannel
	}
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &Listener{
		connString: connString,
		channel:    channel,
		retryDelay: retryDelay,
		log:        log,
	}
}

// Run слушает канал до отмены ctx и вызывает onChange на каждое уведомление.
// При обрыве соединения переподключается через retryDelay.
func (l *Listener) Run(ctx context.Context, onChange func()) {
	const op = "storage.Listener.Run"
	log := l.log.With(sl.Op(op), slog.String("channel", l.channel))

	for {
		err := l.listen(ctx, onChange)
		if ctx.Err() != nil {
			log.Info("change listener stopped")
			return
		}
		log.Warn("change listener disconnected, reconnecting", sl.Err(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(l.retryDelay):
		}
	}
}

func (l *Listener) listen(ctx context.Context, onChange func()) error {
	const op = "storage.Listener.listen"

	conn, err := pgx.Connect(ctx, l.connString)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = conn.Close(context.Background())
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	l.log.Debug("listening for changes", slog.String("channel", l.channel))

	for {
		if _, err := conn.WaitForNotification(ctx); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		onChange()
	}
}
