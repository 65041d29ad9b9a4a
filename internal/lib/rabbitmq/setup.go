package rabbitmq

import (
	"fmt"

	"github.com/streadway/amqp"
)

// SetupFanout открывает канал и объявляет долговечный fanout-обменник exchange.
func SetupFanout(conn *amqp.Connection, exchange string) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupFanout"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	err = ch.ExchangeDeclare(
		exchange,
		amqp.ExchangeFanout,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

// BindExclusiveQueue объявляет эксклюзивную очередь с именем от сервера и привязывает её к exchange.
// Очередь удаляется вместе с соединением, поэтому каждый экземпляр получает свою копию сообщений.
func BindExclusiveQueue(ch *amqp.Channel, exchange string) (string, error) {
	const op = "rabbitmq.BindExclusiveQueue"

	q, err := ch.QueueDeclare(
		"",
		false,
		true,
		true,
		false,
		nil,
	)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if err := ch.QueueBind(q.Name, "", exchange, false, nil); err != nil {
		return "", fmt.Errorf("%s: failed to bind queue %s to %s: %w", op, q.Name, exchange, err)
	}
	return q.Name, nil
}
