package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cabinet-backend/internal/config"
	"cabinet-backend/internal/database"
	"cabinet-backend/internal/event"
	"cabinet-backend/internal/handler"
	"cabinet-backend/internal/mail"
	"cabinet-backend/internal/middleware"
	"cabinet-backend/internal/otp"
	"cabinet-backend/internal/repository"
	"cabinet-backend/internal/router"
	"cabinet-backend/internal/security"
	"cabinet-backend/internal/service"
	"cabinet-backend/internal/token"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	slog.Info("connecting to PostgreSQL")
	db, err := database.New(context.Background(), cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	pool := db.Pool
	userRepo := repository.NewUserRepository(pool)
	apiKeyRepo := repository.NewApiKeyRepository(pool)
	availabilityRepo := repository.NewAvailabilityRepository(pool)
	cabinetEventRepo := repository.NewEventRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	slog.Info("database ready")

	hasher := security.NewHasher(cfg.BcryptCost)
	tokenIssuer, err := token.NewIssuer(
		cfg.JWTAccessSecret, cfg.JWTRefreshSecret, cfg.JWTResetSecret,
		cfg.JWTAccessTTL, cfg.JWTRefreshTTL, cfg.ResetTokenTTL,
	)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	otpEngine := otp.NewEngine("Cabinet Portal", cfg.OTPStep, cfg.OTPWindow, cfg.OTPDigits)

	bus := event.NewBus()

	sender, err := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize mail sender: %w", err)
	}
	dispatcher := mail.NewDispatcher(sender, bus)
	dispatcherCtx, dispatcherCancel := context.WithCancel(context.Background())
	go dispatcher.Run(dispatcherCtx)

	authService := service.NewAuthService(userRepo, hasher, tokenIssuer, otpEngine, bus, cfg.ResetTokenTTL, cfg.AppBaseURL)
	apiKeyService := service.NewApiKeyService(apiKeyRepo, userRepo)
	userService := service.NewUserService(userRepo, otpEngine)
	availabilityService := service.NewAvailabilityService(availabilityRepo, userRepo)
	eventService := service.NewEventService(cabinetEventRepo)
	notificationService := service.NewNotificationService(notificationRepo, userRepo, bus)

	authMiddleware := middleware.NewAuthMiddleware(tokenIssuer, apiKeyService)

	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		User:         handler.NewUserHandler(userService, authService),
		ApiKey:       handler.NewApiKeyHandler(apiKeyService),
		Availability: handler.NewAvailabilityHandler(availabilityService),
		Event:        handler.NewEventHandler(eventService),
		Notification: handler.NewNotificationHandler(notificationService),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			dispatcherCancel,
			db.Close,
		},
	}, nil
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		for _, cleanup := range a.cleanupFuncs {
			cleanup()
		}
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
