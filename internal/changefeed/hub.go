// Package changefeed рассылает сигналы «данные изменились» всем контроллерам синхронизации.
// Источник сигнала (LISTEN/NOTIFY в PostgreSQL или fanout-обменник RabbitMQ) подключается
// снаружи и только вызывает Hub.Notify: содержимое уведомлений не используется.
package changefeed

import (
	"sync"
)

// Hub раздаёт сигналы об изменениях подписчикам.
type Hub struct {
	mu   sync.RWMutex
	next uint64
	subs map[uint64]func()
}

// NewHub создаёт пустой концентратор.
func NewHub() *Hub {
	return &Hub{subs: make(map[uint64]func())}
}

// Subscription — дескриптор подписки. Close освобождает её и безопасен при повторном вызове.
type Subscription struct {
	hub  *Hub
	id   uint64
	once sync.Once
}

// Subscribe регистрирует fn. fn вызывается из горутины источника и не должна блокироваться.
func (h *Hub) Subscribe(fn func()) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next++
	h.subs[h.next] = fn
	return &Subscription{hub: h, id: h.next}
}

// Close отменяет подписку.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.mu.Lock()
		delete(s.hub.subs, s.id)
		s.hub.mu.Unlock()
	})
}

// Notify оповещает всех текущих подписчиков.
func (h *Hub) Notify() {
	h.mu.RLock()
	fns := make([]func(), 0, len(h.subs))
	for _, fn := range h.subs {
		fns = append(fns, fn)
	}
	h.mu.RUnlock()

	for _, fn := range fns {
		fn()
	}
}

// Len возвращает число активных подписок.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
