package panel

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/magabrotheeeer/iptv-panel/internal/changefeed"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

// DefaultIdleTTL — через сколько неиспользуемый контроллер сессии будет закрыт.
const DefaultIdleTTL = 30 * time.Minute

type entry struct {
	ctrl     *Controller
	ready    chan struct{}
	lastUsed atomic.Int64
}

// Registry держит по одному контроллеру на сессию и закрывает простаивающие.
type Registry struct {
	log       *slog.Logger
	gw        Gateway
	feed      Feed
	publisher changefeed.Publisher
	timeout   time.Duration
	idleTTL   time.Duration

	unavailable atomic.Bool
	now         func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewRegistry создаёт реестр контроллеров.
func NewRegistry(log *slog.Logger, gw Gateway, feed Feed, publisher changefeed.Publisher, timeout, idleTTL time.Duration) *Registry {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Registry{
		log:       log,
		gw:        gw,
		feed:      feed,
		publisher: publisher,
		timeout:   timeout,
		idleTTL:   idleTTL,
		now:       time.Now,
		entries:   make(map[string]*entry),
	}
}

// MarkUnavailable переводит панель в состояние Unavailable: проверка хранилища при старте не прошла.
func (r *Registry) MarkUnavailable() {
	r.unavailable.Store(true)
}

// Available сообщает, работает ли панель.
func (r *Registry) Available() bool {
	return !r.unavailable.Load()
}

// Acquire возвращает контроллер сессии sid, создавая и запуская его при первом обращении.
// Ошибка первой загрузки только логируется: контроллер отдаётся с пустым снимком.
func (r *Registry) Acquire(ctx context.Context, sid string, actor models.Actor) (*Controller, error) {
	const op = "panel.Registry.Acquire"
	if !r.Available() {
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}

	r.mu.Lock()
	e, ok := r.entries[sid]
	if ok && e.ctrl.Actor().ID != actor.ID {
		delete(r.entries, sid)
		go e.ctrl.Close()
		ok = false
	}
	if !ok {
		e = &entry{
			ctrl:  NewController(r.log, r.gw, r.feed, r.publisher, actor, r.timeout),
			ready: make(chan struct{}),
		}
		r.entries[sid] = e
		e.lastUsed.Store(r.now().UnixNano())
		r.mu.Unlock()

		if err := e.ctrl.Start(ctx); err != nil {
			r.log.Warn("initial load failed", sl.Op(op), slog.String("session_id", sid), sl.Err(err))
		}
		close(e.ready)
		return e.ctrl, nil
	}
	e.lastUsed.Store(r.now().UnixNano())
	r.mu.Unlock()

	select {
	case <-e.ready:
		return e.ctrl, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	}
}

// Release закрывает контроллер сессии sid, если он есть.
func (r *Registry) Release(sid string) {
	r.mu.Lock()
	e, ok := r.entries[sid]
	delete(r.entries, sid)
	r.mu.Unlock()

	if ok {
		e.ctrl.Close()
	}
}

// Len возвращает число активных контроллеров.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Run периодически закрывает простаивающие контроллеры. При отмене ctx закрывает все.
func (r *Registry) Run(ctx context.Context) {
	const op = "panel.Registry.Run"
	interval := r.idleTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			r.log.Info("session registry stopped", sl.Op(op))
			return
		case <-ticker.C:
			if n := r.EvictIdle(); n > 0 {
				r.log.Info("evicted idle controllers", sl.Op(op), slog.Int("count", n))
			}
		}
	}
}

// EvictIdle закрывает контроллеры, не использовавшиеся дольше idleTTL.
func (r *Registry) EvictIdle() int {
	deadline := r.now().Add(-r.idleTTL).UnixNano()

	r.mu.Lock()
	var stale []*entry
	for sid, e := range r.entries {
		if e.lastUsed.Load() < deadline {
			stale = append(stale, e)
			delete(r.entries, sid)
		}
	}
	r.mu.Unlock()

	for _, e := range stale {
		e.ctrl.Close()
	}
	return len(stale)
}

// CloseAll закрывает все контроллеры.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.entries
	r.entries = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range all {
		e.ctrl.Close()
	}
}
