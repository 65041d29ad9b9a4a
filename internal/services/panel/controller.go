// Package panel содержит контроллер синхронизации: он держит снимок данных одной сессии,
// обновляет его целиком по явному запросу или по сигналу об изменениях и выполняет
// записи в хранилище после проверок слоя доступа.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/iptv-panel/internal/changefeed"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/models"
)

var (
	// ErrUnavailable — хранилище было недоступно при старте, панель не работает.
	ErrUnavailable = errors.New("remote store is unreachable")
	// ErrClosed — контроллер уже закрыт.
	ErrClosed = errors.New("controller is closed")
)

// State — состояние контроллера синхронизации.
type State string

const (
	StateUninitialized        State = "uninitialized"
	StateLoading              State = "loading"
	StateBackgroundRefreshing State = "background_refreshing"
	StateReady                State = "ready"
	StateUnavailable          State = "unavailable"
)

// DefaultRefreshTimeout ограничивает один цикл обновления, если таймаут не задан.
const DefaultRefreshTimeout = 15 * time.Second

// Gateway — операции удалённого хранилища, нужные контроллеру.
type Gateway interface {
	ListAccounts(ctx context.Context) ([]models.Account, error)
	ListOffers(ctx context.Context) ([]models.Offer, error)
	ListSubscriptions(ctx context.Context) ([]models.Subscription, error)
	UpsertAccount(ctx context.Context, acc models.Account) error
	UpsertOffer(ctx context.Context, offer models.Offer) error
	UpsertSubscription(ctx context.Context, sub models.Subscription) error
	DeleteAccount(ctx context.Context, id string) error
	DeleteOffer(ctx context.Context, id string) error
	DeleteSubscription(ctx context.Context, id string) error
}

// Feed выдаёт подписку на сигналы об изменениях.
type Feed interface {
	Subscribe(fn func()) *changefeed.Subscription
}

// Status описывает состояние контроллера для клиента.
type Status struct {
	State       State     `json:"state"`
	LastRefresh time.Time `json:"last_refresh"`
	LastError   string    `json:"last_error,omitempty"`
}

// Controller синхронизирует снимок данных одного актора.
//
// Обновления сериализуются: одновременно идёт не больше одного цикла. Снимок
// публикуется атомарно и заменяется целиком; при ошибке чтения остаётся прежний.
type Controller struct {
	log       *slog.Logger
	gw        Gateway
	feed      Feed
	publisher changefeed.Publisher
	actor     models.Actor
	timeout   time.Duration

	refreshMu sync.Mutex

	mu          sync.RWMutex
	state       State
	snap        *models.Snapshot
	lastRefresh time.Time
	lastErr     string

	notify    chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	sub       *changefeed.Subscription
	startOnce sync.Once
	closeOnce sync.Once
	closed    bool
}

// NewController создаёт контроллер для actor. До Start снимок пуст.
func NewController(log *slog.Logger, gw Gateway, feed Feed, publisher changefeed.Publisher, actor models.Actor, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultRefreshTimeout
	}
	if publisher == nil {
		publisher = changefeed.Noop{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		log:       log.With(slog.String("account_id", actor.ID)),
		gw:        gw,
		feed:      feed,
		publisher: publisher,
		actor:     actor,
		timeout:   timeout,
		state:     StateUninitialized,
		snap:      models.Empty(),
		notify:    make(chan struct{}, 1),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Actor возвращает актора, которому принадлежит контроллер.
func (c *Controller) Actor() models.Actor {
	return c.actor
}

// Start выполняет первую загрузку, подписывается на сигналы об изменениях
// и запускает фоновый обработчик. Ошибка первой загрузки возвращается,
// но контроллер остаётся рабочим: следующий сигнал повторит загрузку.
func (c *Controller) Start(ctx context.Context) error {
	const op = "panel.Controller.Start"
	started := false
	c.startOnce.Do(func() {
		started = true
		if c.feed != nil {
			c.sub = c.feed.Subscribe(c.signal)
		}
		go c.worker()
		liveControllers.Inc()
	})
	if !started {
		return nil
	}
	if err := c.Refresh(ctx, false); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// signal ставит фоновое обновление в очередь. Сигналы, пришедшие пока
// обновление уже ожидает, сливаются в одно.
func (c *Controller) signal() {
	select {
	case c.notify <- struct{}{}:
	default:
	}
}

func (c *Controller) worker() {
	defer close(c.done)
	for {
		select {
		case <-c.ctx.Done():
			return
		case <-c.notify:
			if err := c.Refresh(c.ctx, true); err != nil && !errors.Is(err, ErrClosed) && c.ctx.Err() == nil {
				c.log.Warn("background refresh failed", sl.Err(err))
			}
		}
	}
}

// Refresh перечитывает предложения и подписки (и учётные записи для администратора),
// применяет разграничение доступа и атомарно публикует новый снимок.
// При ошибке снимок и состояние остаются такими, какими были до вызова.
func (c *Controller) Refresh(ctx context.Context, background bool) error {
	const op = "panel.Controller.Refresh"
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return fmt.Errorf("%s: %w", op, ErrClosed)
	}
	prior := c.state
	if background {
		c.state = StateBackgroundRefreshing
	} else {
		c.state = StateLoading
	}
	c.mu.Unlock()

	mode := modeLabel(background)
	start := time.Now()
	snap, err := c.fetch(ctx)
	refreshDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.state = prior
		c.lastErr = err.Error()
		refreshTotal.WithLabelValues(mode, resultError).Inc()
		c.log.Error("refresh failed", sl.Op(op), slog.String("mode", mode), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	c.snap = snap
	c.state = StateReady
	c.lastRefresh = time.Now()
	c.lastErr = ""
	refreshTotal.WithLabelValues(mode, resultOK).Inc()
	c.log.Debug("snapshot published", sl.Op(op), slog.String("mode", mode),
		slog.Int("subscriptions", len(snap.Subscriptions)), slog.Int("offers", len(snap.Offers)))
	return nil
}

func (c *Controller) fetch(ctx context.Context) (*models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var (
		offers   []models.Offer
		subs     []models.Subscription
		accounts []models.Account
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		offers, err = c.gw.ListOffers(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		subs, err = c.gw.ListSubscriptions(gctx)
		return err
	})
	if c.actor.IsAdmin() {
		g.Go(func() error {
			var err error
			accounts, err = c.gw.ListAccounts(gctx)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buildSnapshot(c.actor, offers, subs, accounts), nil
}

// buildSnapshot применяет разграничение доступа и упорядочивает записи,
// чтобы одинаковые данные давали одинаковый снимок.
func buildSnapshot(actor models.Actor, offers []models.Offer, subs []models.Subscription, accounts []models.Account) *models.Snapshot {
	snap := models.Empty()

	snap.Offers = append(snap.Offers, offers...)
	sort.SliceStable(snap.Offers, func(i, j int) bool { return snap.Offers[i].ID < snap.Offers[j].ID })

	scoped := scopeFor(actor, subs)
	snap.Subscriptions = append(snap.Subscriptions, scoped...)
	sort.SliceStable(snap.Subscriptions, func(i, j int) bool { return snap.Subscriptions[i].ID < snap.Subscriptions[j].ID })

	if actor.IsAdmin() {
		snap.Accounts = append(snap.Accounts, accounts...)
		sort.SliceStable(snap.Accounts, func(i, j int) bool { return snap.Accounts[i].ID < snap.Accounts[j].ID })
	}
	return snap
}

// Snapshot возвращает последний опубликованный снимок. Снимок неизменяем.
func (c *Controller) Snapshot() *models.Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

// Status возвращает текущее состояние.
func (c *Controller) Status() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Status{State: c.state, LastRefresh: c.lastRefresh, LastError: c.lastErr}
}

// Close отписывается от сигналов и останавливает фоновый обработчик.
// Повторный вызов ничего не делает.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		c.closed = true
		c.mu.Unlock()

		if c.sub != nil {
			c.sub.Close()
		}
		c.cancel()

		started := true
		c.startOnce.Do(func() { started = false })
		if started {
			<-c.done
			liveControllers.Dec()
		}
		c.log.Debug("controller closed")
	})
}
