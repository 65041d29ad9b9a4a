package changefeed

import (
	"context"
	"fmt"
	"sync"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/iptv-panel/internal/lib/rabbitmq"
)

// Change описывает локальную запись, после которой остальные экземпляры должны перечитать данные.
type Change struct {
	Source string `json:"source"`
	Op     string `json:"op"`
	ID     string `json:"id"`
}

// Источники изменений.
const (
	SourceAccounts      = "accounts"
	SourceOffers        = "offers"
	SourceSubscriptions = "subscribers"

	OpUpsert = "upsert"
	OpDelete = "delete"
)

// Publisher сообщает о локальной записи.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

// Noop ничего не публикует: при драйвере postgres сигнал отправляют триггеры базы.
type Noop struct{}

// Publish ничего не делает.
func (Noop) Publish(context.Context, Change) error { return nil }

// AMQPPublisher публикует изменения в fanout-обменник.
type AMQPPublisher struct {
	mu       sync.Mutex
	ch       *amqp.Channel
	exchange string
}

// NewAMQPPublisher объявляет обменник и возвращает публикатор поверх conn.
func NewAMQPPublisher(conn *amqp.Connection, exchange string) (*AMQPPublisher, error) {
	const op = "changefeed.NewAMQPPublisher"
	ch, err := rabbitmq.SetupFanout(conn, exchange)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &AMQPPublisher{ch: ch, exchange: exchange}, nil
}

// Publish отправляет сигнал об изменении.
func (p *AMQPPublisher) Publish(_ context.Context, c Change) error {
	const op = "changefeed.AMQPPublisher.Publish"
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := rabbitmq.PublishMessage(p.ch, p.exchange, "", c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Close закрывает канал публикатора.
func (p *AMQPPublisher) Close() error {
	return p.ch.Close()
}
