// Package panel собирает приложение панели: хранилище, сессии, канал изменений,
// реестр контроллеров синхронизации и HTTP-сервер.
package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/iptv-panel/internal/assistant"
	"github.com/magabrotheeeer/iptv-panel/internal/changefeed"
	"github.com/magabrotheeeer/iptv-panel/internal/config"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/jwt"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/iptv-panel/internal/lib/sl"
	"github.com/magabrotheeeer/iptv-panel/internal/migrations"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
	"github.com/magabrotheeeer/iptv-panel/internal/session"
	"github.com/magabrotheeeer/iptv-panel/internal/storage"
)

const (
	probeTimeout    = 5 * time.Second
	shutdownTimeout = 15 * time.Second
	rabbitRetries   = 5
)

// App — собранное приложение панели.
type App struct {
	server   *http.Server
	logger   *slog.Logger
	db       *storage.Storage
	store    *session.Store
	registry *panel.Registry
	closers  []func() error
	workers  []func(ctx context.Context)
}

// New создаёт приложение. Недоступность хранилища не считается фатальной:
// сервер стартует, а клиенты получают ответ store_unreachable.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.panel.New"

	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	available := prepareStore(ctx, db, cfg, logger)

	store, err := session.InitStore(ctx, cfg.RedisConnection, cfg.Session.KeyPrefix)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	tokens := jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.JWTToken.TokenTTL)
	sessions := session.NewManager(logger, db, store, tokens, cfg.Session.TTL)

	app := &App{
		logger: logger,
		db:     db,
		store:  store,
	}

	hub := changefeed.NewHub()
	publisher, err := app.wireChangeFeed(ctx, cfg, hub, available)
	if err != nil {
		_ = store.Close()
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	registry := panel.NewRegistry(logger, db, hub, publisher, cfg.Panel.RefreshTimeout, cfg.Panel.IdleSessionTTL)
	if !available {
		registry.MarkUnavailable()
	}
	app.registry = registry
	app.workers = append(app.workers, registry.Run)

	assistantClient, err := assistant.NewClient(ctx, assistant.Config{
		APIKey:     cfg.Assistant.APIKey,
		BaseURL:    cfg.Assistant.BaseURL,
		APIVersion: cfg.Assistant.APIVersion,
		TextModel:  cfg.Assistant.TextModel,
		ImageModel: cfg.Assistant.ImageModel,
		Timeout:    cfg.Assistant.Timeout,
	})
	if err != nil {
		app.closeAll()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !assistantClient.Configured() {
		logger.Warn("assistant api key is not set, assistant endpoints will fail")
	}

	router := chi.NewRouter()
	RegisterRoutes(router, logger, Dependencies{
		Sessions:  sessions,
		Registry:  registry,
		Assistant: assistantClient,
		HTTP:      cfg.HTTPServer,
	})

	app.server = &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.Assistant.Timeout + cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return app, nil
}

// prepareStore проверяет доступность хранилища, применяет миграции и начальные данные.
func prepareStore(ctx context.Context, db *storage.Storage, cfg *config.Config, logger *slog.Logger) bool {
	if err := migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		logger.Error("store is unreachable, migrations skipped", sl.Err(err))
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	if !db.Probe(probeCtx) {
		logger.Error("store probe failed")
		return false
	}

	res, err := db.Seed(ctx, cfg.Panel.AdminPassword)
	if err != nil {
		logger.Error("failed to seed store", sl.Err(err))
		return false
	}
	if res.AdminCreated {
		logger.Warn("primary administrator created with configured password, change it")
	}
	if res.OffersCreated > 0 {
		logger.Info("default offers created", slog.Int("count", res.OffersCreated))
	}
	return true
}

// wireChangeFeed выбирает источник сигналов об изменениях и возвращает публикатор.
func (a *App) wireChangeFeed(ctx context.Context, cfg *config.Config, hub *changefeed.Hub, available bool) (changefeed.Publisher, error) {
	switch cfg.ChangeFeed.Driver {
	case config.ChangeFeedPostgres, "":
		if available {
			listener := storage.NewListener(cfg.StorageConnectionString, cfg.ChangeFeed.Channel, cfg.ChangeFeed.RetryDelay, a.logger)
			a.workers = append(a.workers, func(ctx context.Context) {
				listener.Run(ctx, hub.Notify)
			})
		}
		return changefeed.Noop{}, nil
	case config.ChangeFeedRabbitMQ:
		conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, rabbitRetries, cfg.ChangeFeed.RetryDelay)
		if err != nil {
			return nil, err
		}
		publisher, err := changefeed.NewAMQPPublisher(conn, cfg.RabbitMQ.Exchange)
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		a.closers = append(a.closers, publisher.Close, conn.Close)

		consumer := changefeed.NewAMQPConsumer(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, cfg.ChangeFeed.RetryDelay, a.logger)
		a.workers = append(a.workers, func(ctx context.Context) {
			consumer.ConsumeInto(ctx, hub)
		})
		return publisher, nil
	default:
		return nil, fmt.Errorf("unknown change feed driver %q", cfg.ChangeFeed.Driver)
	}
}

// Run запускает фоновые задачи и HTTP-сервер до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	workersCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	var wg sync.WaitGroup
	for _, work := range a.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			work(workersCtx)
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case runErr = <-errCh:
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		runErr = a.server.Shutdown(timeoutCtx)
	}

	stopWorkers()
	wg.Wait()

	a.closeAll()
	return runErr
}

// closeAll закрывает брокер, хранилище сессий и пул соединений с базой.
func (a *App) closeAll() {
	for _, closeFn := range a.closers {
		if err := closeFn(); err != nil {
			a.logger.Warn("failed to close resource", sl.Err(err))
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close session store", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close storage", sl.Err(err))
	}
}
