package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	"github.com/streadway/amqp"
)

// ErrDeliveryClosed — брокер закрыл поток сообщений (обрыв соединения или канала).
var ErrDeliveryClosed = errors.New("delivery channel closed")

// ConsumerMessage читает очередь queueName и передаёт тело каждого сообщения в handler.
// Блокируется до отмены ctx (возвращает nil) или до закрытия потока брокером.
func ConsumerMessage(ctx context.Context, ch *amqp.Channel, queueName string, handler func([]byte)) error {
	const op = "rabbitmq.ConsumerMessage"
	delivery, err := ch.Consume(
		queueName,
		"",
		true,
		true,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for {
		select {
		case d, ok := <-delivery:
			if !ok {
				return fmt.Errorf("%s: %w", op, ErrDeliveryClosed)
			}
			handler(d.Body)
		case <-ctx.Done():
			return nil
		}
	}
}
