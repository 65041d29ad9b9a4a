package changefeed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
)

// AMQPConsumer привязывает эксклюзивную очередь к обменнику и пересылает каждое сообщение в Hub.
type AMQPConsumer struct {
	url        string
	exchange   string
	retryDelay time.Duration
	log        *slog.Logger
}

// NewAMQPConsumer создаёт потребителя сигналов из обменника exchange.
func NewAMQPConsumer(url, exchange string, retryDelay time.Duration, log *slog.Logger) *AMQPConsumer {
	if retryDelay <= 0 {
		retryDelay = 5 * time.Second
	}
	return &AMQPConsumer{url: url, exchange: exchange, retryDelay: retryDelay, log: log}
}

// ConsumeInto читает сигналы до отмены ctx, переподключаясь при обрывах.
func (c *AMQPConsumer) ConsumeInto(ctx context.Context, hub *Hub) {
	const op = "changefeed.AMQPConsumer.ConsumeInto"
	log := c.log.With(sl.Op(op), slog.String("exchange", c.exchange))

	for {
		err := c.consume(ctx, hub)
		if ctx.Err() != nil {
			log.Info("change consumer stopped")
			return
		}
		log.Warn("change consumer disconnected, reconnecting", sl.Err(err))

		select {
		case <-ctx.Done():
			return
		case <-time.After(c.retryDelay):
		}
	}
}

func (c *AMQPConsumer) consume(ctx context.Context, hub *Hub) error {
	const op = "changefeed.AMQPConsumer.consume"

	conn, err := rabbitmq.Connect(ctx, c.url, 1, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupFanout(conn, c.exchange)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	queue, err := rabbitmq.BindExclusiveQueue(ch, c.exchange)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.log.Debug("consuming changes", slog.String("queue", queue))

	if err := rabbitmq.ConsumerMessage(ctx, ch, queue, func([]byte) { hub.Notify() }); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
