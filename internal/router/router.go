package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"cabinet-backend/internal/config"
	"cabinet-backend/internal/handler"
	"cabinet-backend/internal/metrics"
	"cabinet-backend/internal/middleware"
)

type Handlers struct {
	Auth         *handler.AuthHandler
	User         *handler.UserHandler
	ApiKey       *handler.ApiKeyHandler
	Availability *handler.AvailabilityHandler
	Event        *handler.EventHandler
	Notification *handler.NotificationHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(metrics.Instrument)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Route("/auth", func(auth chi.Router) {
			auth.With(authMiddleware.RequireAuth, authMiddleware.RequireRoles("admin")).Post("/register", h.Auth.Register)
			auth.Post("/login", h.Auth.Login)
			auth.Post("/login/mfa", h.Auth.LoginMFA)
			auth.Post("/2fa/verify", h.Auth.VerifyTwoFactor)
			auth.Post("/refresh", h.Auth.Refresh)
			auth.With(authMiddleware.RequireAuth).Post("/logout", h.Auth.Logout)
			auth.Post("/forgot-password", h.Auth.ForgotPassword)
			auth.Post("/reset-password", h.Auth.ResetPassword)
			auth.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
		})

		api.Route("/users", func(users chi.Router) {
			users.Use(authMiddleware.RequireAuthOrApiKey)

			users.With(authMiddleware.RequireRoles("admin")).Get("/", h.User.List)
			users.Patch("/profile/change-password", h.User.ChangePassword)
			users.Post("/2fa/enable", h.User.EnableTwoFactor)
			users.Get("/{id}", h.User.Get)
			users.With(authMiddleware.RequireRoles("admin")).Put("/{id}", h.User.Update)
			users.With(authMiddleware.RequireRoles("admin")).Delete("/{id}", h.User.Delete)
			users.With(authMiddleware.RequireRoles("admin")).Patch("/{id}/activate", h.User.Activate)
			users.With(authMiddleware.RequireRoles("admin")).Patch("/{id}/deactivate", h.User.Deactivate)
		})

		api.Route("/api-keys", func(keys chi.Router) {
			keys.Use(authMiddleware.RequireAuth)

			keys.With(authMiddleware.RequireRoles("admin")).Post("/", h.ApiKey.Create)
			keys.Get("/", h.ApiKey.List)
			keys.Delete("/{id}", h.ApiKey.Revoke)
		})

		api.Route("/availability", func(availability chi.Router) {
			availability.Use(authMiddleware.RequireAuthOrApiKey)

			availability.Post("/", h.Availability.Create)
			availability.Get("/", h.Availability.ListMine)
			availability.With(authMiddleware.RequireRoles("admin")).Get("/all", h.Availability.ListAll)
			availability.Put("/{id}", h.Availability.Update)
			availability.Delete("/{id}", h.Availability.Delete)
		})

		api.Route("/events", func(events chi.Router) {
			events.Use(authMiddleware.RequireAuthOrApiKey)

			events.With(authMiddleware.RequireRoles("admin")).Post("/", h.Event.Create)
			events.Get("/", h.Event.List)
			events.Get("/{id}", h.Event.Get)
			events.With(authMiddleware.RequireRoles("admin")).Put("/{id}", h.Event.Update)
			events.With(authMiddleware.RequireRoles("admin")).Delete("/{id}", h.Event.Delete)
		})

		api.Route("/notifications", func(notifications chi.Router) {
			notifications.Use(authMiddleware.RequireAuth)

			notifications.With(authMiddleware.RequireRoles("admin")).Post("/", h.Notification.Broadcast)
			notifications.Get("/", h.Notification.List)
			notifications.Get("/unread", h.Notification.ListUnread)
			notifications.Patch("/{id}/read", h.Notification.MarkRead)
		})
	})

	return r
}
