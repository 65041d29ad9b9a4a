package panel

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/iptv-panel/internal/assistant"
	"github.com/magabrotheeeer/iptv-panel/internal/config"
	accountremove "github.com/magabrotheeeer/iptv-panel/internal/http/handlers/account/remove"
	accountsave "github.com/magabrotheeeer/iptv-panel/internal/http/handlers/account/save"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/assistant/chat"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/assistant/renewal"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/auth/reset"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/offer/image"
	offerremove "github.com/magabrotheeeer/iptv-panel/internal/http/handlers/offer/remove"
	offersave "github.com/magabrotheeeer/iptv-panel/internal/http/handlers/offer/save"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/panel/dashboard"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/panel/health"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/panel/refresh"
	"github.com/magabrotheeeer/iptv-panel/internal/http/handlers/panel/snapshot"
	subscriptionremove "github.com/magabrotheeeer/iptv-panel/internal/http/handlers/subscription/remove"
	subscriptionsave "github.com/magabrotheeeer/iptv-panel/internal/http/handlers/subscription/save"
	"github.com/magabrotheeeer/iptv-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/iptv-panel/internal/services/panel"
	"github.com/magabrotheeeer/iptv-panel/internal/session"
)

// Dependencies — всё, что нужно маршрутам.
type Dependencies struct {
	Sessions  *session.Manager
	Registry  *panel.Registry
	Assistant *assistant.Client
	HTTP      config.HTTPServer
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps Dependencies) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middlewarectx.Recoverer(logger),
		middlewarectx.Metrics,
	)

	r.Get("/health", health.New(logger, deps.Registry).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		// Сброс сессии работает и при недоступном хранилище
		r.Post("/session/reset", reset.New(logger, deps.Sessions, deps.Registry).ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AvailabilityMiddleware(logger, deps.Registry))

			r.With(middlewarectx.RateLimitMiddleware(logger, deps.HTTP.LoginRPS, deps.HTTP.LoginBurst)).
				Post("/auth/login", login.New(logger, deps.Sessions).ServeHTTP)

			// Группа с аутентификацией по сессии
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AuthMiddleware(logger, deps.Sessions, deps.Registry))

				r.Post("/auth/logout", logout.New(logger, deps.Sessions, deps.Registry).ServeHTTP)

				r.Get("/snapshot", snapshot.New(logger).ServeHTTP)
				r.Post("/refresh", refresh.New(logger).ServeHTTP)
				r.Get("/dashboard", dashboard.New(logger).ServeHTTP)

				r.Post("/subscriptions", subscriptionsave.New(logger).ServeHTTP)
				r.Put("/subscriptions/{id}", subscriptionsave.New(logger).ServeHTTP)
				r.Delete("/subscriptions/{id}", subscriptionremove.New(logger).ServeHTTP)
				r.Post("/subscriptions/{id}/renewal-email", renewal.New(logger, deps.Assistant).ServeHTTP)

				r.Post("/offers", offersave.New(logger).ServeHTTP)
				r.Put("/offers/{id}", offersave.New(logger).ServeHTTP)
				r.Delete("/offers/{id}", offerremove.New(logger).ServeHTTP)
				r.Post("/offers/{id}/image", image.New(logger, deps.Assistant).ServeHTTP)

				r.Post("/accounts", accountsave.New(logger).ServeHTTP)
				r.Put("/accounts/{id}", accountsave.New(logger).ServeHTTP)
				r.Delete("/accounts/{id}", accountremove.New(logger).ServeHTTP)

				r.Post("/assistant/chat", chat.New(logger, deps.Assistant).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
