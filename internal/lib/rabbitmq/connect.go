// Package rabbitmq содержит обвязку над AMQP для рассылки сигналов об изменениях
// данных панели между экземплярами: подключение, fanout-обменник, публикация и чтение.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к брокеру, делая до retries попыток с паузой delay.
func Connect(ctx context.Context, connection string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"
	if retries < 1 {
		retries = 1
	}
	var err error

	for i := range retries {
		var conn *amqp.Connection
		conn, err = amqp.Dial(connection)
		if err == nil {
			return conn, nil
		}
		if i == retries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("%s: %w", op, err)
}
